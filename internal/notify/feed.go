package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// DefaultFeedSize is the number of notifications a feed keeps.
const DefaultFeedSize = 100

// Feed subscribes to the notification topics and keeps the most recent
// notifications in a fixed-size ring.
type Feed struct {
	bus       domain.EventBus
	namespace string

	mu    sync.RWMutex
	ring  []domain.Notification
	next  int
	count int

	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewFeed creates a feed holding up to size notifications.
func NewFeed(bus domain.EventBus, namespace string, size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		bus:       bus,
		namespace: namespace,
		ring:      make([]domain.Notification, size),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start subscribes to every notification topic.
func (f *Feed) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, topic := range domain.NotificationTopics() {
		sub, err := f.bus.Subscribe(f.ctx, f.namespace, topic, f.handleMessage)
		if err != nil {
			f.unsubscribeLocked()
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		f.subscriptions = append(f.subscriptions, sub)
	}

	slog.Info("notification feed started",
		"namespace", f.namespace,
		"topics", len(f.subscriptions),
	)
	return nil
}

func (f *Feed) handleMessage(ctx context.Context, msg *domain.Message) error {
	var n domain.Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		slog.Error("failed to parse notification",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}
	if n.Topic == "" {
		n.Topic = msg.Topic
	}

	f.Add(n)
	slog.Debug("notification received", "topic", n.Topic, "title", n.Title)
	return nil
}

// Add records a notification, evicting the oldest when the feed is full.
func (f *Feed) Add(n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ring[f.next] = n
	f.next = (f.next + 1) % len(f.ring)
	if f.count < len(f.ring) {
		f.count++
	}
}

// Recent returns up to limit notifications, newest first. A limit <= 0
// returns everything held.
func (f *Feed) Recent(limit int) []domain.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if limit <= 0 || limit > f.count {
		limit = f.count
	}
	out := make([]domain.Notification, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.ring)) % len(f.ring)
		out = append(out, f.ring[idx])
	}
	return out
}

// Len returns the number of notifications held.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// Stop unsubscribes from the bus. Held notifications remain readable.
func (f *Feed) Stop() error {
	f.cancel()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribeLocked()

	slog.Info("notification feed stopped")
	return nil
}

func (f *Feed) unsubscribeLocked() {
	for _, sub := range f.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	f.subscriptions = nil
}

// Stats describes the feed's subscriptions.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
	Held              int      `json:"held"`
}

// GetStats returns current feed statistics.
func (f *Feed) GetStats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	topics := make([]string, len(f.subscriptions))
	for i, sub := range f.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(f.subscriptions),
		Topics:            topics,
		Held:              f.count,
	}
}
