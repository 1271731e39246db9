// Package bus carries notification events between the API and the
// notification feed.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// ChannelBus implements EventBus using Go channels within one process.
type ChannelBus struct {
	mu            sync.RWMutex
	bufferSize    int
	subscriptions map[string][]*channelSubscription
	closed        bool
}

type channelSubscription struct {
	id     string
	key    string
	topic  string
	bus    *ChannelBus
	msgCh  chan *domain.Message
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChannelBus creates a new channel-based event bus.
func NewChannelBus(bufferSize int) *ChannelBus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &ChannelBus{
		bufferSize:    bufferSize,
		subscriptions: make(map[string][]*channelSubscription),
	}
}

// Publish delivers a message to every subscriber of topic in namespace.
// Subscribers whose buffer is full miss the message.
func (b *ChannelBus) Publish(ctx context.Context, namespace string, topic string, payload []byte) error {
	if namespace == "" {
		return errNamespaceRequired
	}

	msg := newMessage(uuid.New().String(), namespace, topic, payload, time.Now().UnixNano())

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errBusClosed
	}

	for _, sub := range b.subscriptions[b.makeKey(namespace, topic)] {
		select {
		case sub.msgCh <- msg:
		default:
			slog.Warn("subscriber buffer full, dropping message",
				"topic", topic,
				"message_id", msg.ID,
			)
		}
	}

	return nil
}

// Subscribe registers a handler for a topic. The handler runs on its own
// goroutine until the subscription, ctx or the bus is closed.
func (b *ChannelBus) Subscribe(ctx context.Context, namespace string, topic string, handler domain.MessageHandler) (domain.Subscription, error) {
	if namespace == "" {
		return nil, errNamespaceRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errBusClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	key := b.makeKey(namespace, topic)

	sub := &channelSubscription{
		id:     uuid.New().String(),
		key:    key,
		topic:  topic,
		bus:    b,
		msgCh:  make(chan *domain.Message, b.bufferSize),
		ctx:    subCtx,
		cancel: cancel,
	}

	go sub.run(handler)

	b.subscriptions[key] = append(b.subscriptions[key], sub)

	return sub, nil
}

func (s *channelSubscription) run(handler domain.MessageHandler) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.msgCh:
			if err := handler(s.ctx, msg); err != nil {
				slog.Error("handler error",
					"topic", s.topic,
					"message_id", msg.ID,
					"error", err,
				)
			}
		}
	}
}

// Ping checks bus health.
func (b *ChannelBus) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errBusClosed
	}
	return nil
}

// Close stops every subscription. Publishing after Close fails.
func (b *ChannelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true

	for _, subs := range b.subscriptions {
		for _, sub := range subs {
			sub.cancel()
		}
	}

	b.subscriptions = make(map[string][]*channelSubscription)
	return nil
}

// SubscriberCount returns the number of live subscriptions to topic.
func (b *ChannelBus) SubscriberCount(namespace, topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[b.makeKey(namespace, topic)])
}

func (b *ChannelBus) makeKey(namespace, topic string) string {
	return namespace + ":" + topic
}

func (b *ChannelBus) remove(sub *channelSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscriptions[sub.key]
	for i, s := range subs {
		if s == sub {
			b.subscriptions[sub.key] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscriptions[sub.key]) == 0 {
		delete(b.subscriptions, sub.key)
	}
}

// Unsubscribe stops receiving messages.
func (s *channelSubscription) Unsubscribe() error {
	s.cancel()
	s.bus.remove(s)
	return nil
}

// Topic returns the subscribed topic.
func (s *channelSubscription) Topic() string {
	return s.topic
}
