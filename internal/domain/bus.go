package domain

import (
	"context"
)

// EventBus defines the interface for event-driven communication.
// Supports Go channels (in-process) or NATS.
// Every message is scoped to a namespace.
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, namespace string, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, namespace string, topic string, handler MessageHandler) (Subscription, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string            `json:"id"`
	Namespace string            `json:"namespace"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string `mapstructure:"type"`

	ChannelBufferSize int `mapstructure:"channel_buffer_size"`

	NATSUrl           string `mapstructure:"nats_url"`
	NATSToken         string `mapstructure:"nats_token"`
	NATSMaxReconnects int    `mapstructure:"nats_max_reconnects"`
	NATSReconnectWait int    `mapstructure:"nats_reconnect_wait"` // seconds
}

// Notification topics.
const (
	TopicExportRequested = "defaultdesk.defaulters.export"
	TopicRulesSaved      = "defaultdesk.riskconfig.saved"
	TopicRulesPreviewed  = "defaultdesk.riskconfig.previewed"
)

// NotificationTopics lists every topic the notification feed listens on.
func NotificationTopics() []string {
	return []string{TopicExportRequested, TopicRulesSaved, TopicRulesPreviewed}
}
