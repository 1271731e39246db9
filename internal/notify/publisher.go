// Package notify delivers user-facing notifications over the event bus and
// keeps the most recent ones in a feed.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// Publisher publishes notifications on the event bus.
type Publisher struct {
	bus       domain.EventBus
	namespace string
	now       func() time.Time
}

// NewPublisher creates a publisher for namespace.
func NewPublisher(bus domain.EventBus, namespace string) *Publisher {
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	return &Publisher{bus: bus, namespace: namespace, now: time.Now}
}

// Notify builds a notification and publishes it on topic. The notification
// is returned even when publishing fails.
func (p *Publisher) Notify(ctx context.Context, topic, title, description string) (domain.Notification, error) {
	n := domain.Notification{
		ID:          uuid.New().String(),
		Topic:       topic,
		Title:       title,
		Description: description,
		Timestamp:   p.now().UTC(),
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return n, fmt.Errorf("failed to encode notification: %w", err)
	}
	if err := p.bus.Publish(ctx, p.namespace, topic, payload); err != nil {
		return n, fmt.Errorf("failed to publish notification: %w", err)
	}
	return n, nil
}
