package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/opensource-finance/defaultdesk/internal/domain"
)

const (
	defaultNATSMaxReconnects = 10
	defaultNATSReconnectWait = 5 // seconds

	// headerMessageID carries the envelope ID so it is visible to NATS tooling
	// without decoding the payload.
	headerMessageID = "Defaultdesk-Message-Id"
)

// NATSBus delivers notifications over NATS so every replica's feed sees
// them. Messages travel as JSON-encoded domain.Message envelopes on the
// subject namespace.topic.
type NATSBus struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs map[*natsSubscription]struct{}
}

type natsSubscription struct {
	topic string
	sub   *nats.Subscription
	bus   *NATSBus
}

// NewNATSBus connects to cfg.NATSUrl, retrying up to NATSMaxReconnects times.
func NewNATSBus(cfg domain.EventBusConfig) (*NATSBus, error) {
	if cfg.NATSUrl == "" {
		cfg.NATSUrl = nats.DefaultURL
	}
	if cfg.NATSMaxReconnects <= 0 {
		cfg.NATSMaxReconnects = defaultNATSMaxReconnects
	}
	if cfg.NATSReconnectWait <= 0 {
		cfg.NATSReconnectWait = defaultNATSReconnectWait
	}

	conn, err := connectNATS(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("NATS connected",
		"url", conn.ConnectedUrl(),
		"server_id", conn.ConnectedServerId(),
	)

	return &NATSBus{
		conn: conn,
		subs: make(map[*natsSubscription]struct{}),
	}, nil
}

func connectNATS(cfg domain.EventBusConfig) (*nats.Conn, error) {
	wait := time.Duration(cfg.NATSReconnectWait) * time.Second
	opts := natsOptions(cfg, wait)

	var lastErr error
	for attempt := 1; attempt <= cfg.NATSMaxReconnects; attempt++ {
		conn, err := nats.Connect(cfg.NATSUrl, opts...)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		slog.Warn("NATS connection attempt failed",
			"attempt", attempt,
			"max_attempts", cfg.NATSMaxReconnects,
			"error", err,
		)
		if attempt < cfg.NATSMaxReconnects {
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("failed to connect to NATS after %d attempts: %w", cfg.NATSMaxReconnects, lastErr)
}

func natsOptions(cfg domain.EventBusConfig, wait time.Duration) []nats.Option {
	opts := []nats.Option{
		nats.Name("defaultdesk"),
		nats.MaxReconnects(cfg.NATSMaxReconnects),
		nats.ReconnectWait(wait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err, "will_reconnect", !nc.IsClosed())
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			slog.Info("NATS connection closed")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			var subject string
			if sub != nil {
				subject = sub.Subject
			}
			slog.Error("NATS error", "error", err, "subject", subject)
		}),
	}
	if cfg.NATSToken != "" {
		opts = append(opts, nats.Token(cfg.NATSToken))
	}
	return opts
}

// Publish sends payload to every subscriber of topic in namespace.
func (b *NATSBus) Publish(ctx context.Context, namespace string, topic string, payload []byte) error {
	if namespace == "" {
		return errNamespaceRequired
	}

	out, err := encodeNATSMessage(newMessage(uuid.New().String(), namespace, topic, payload, time.Now().UnixNano()))
	if err != nil {
		return err
	}
	return b.conn.PublishMsg(out)
}

// Subscribe invokes handler for every message published to topic in namespace.
// Handler errors are logged.
func (b *NATSBus) Subscribe(ctx context.Context, namespace string, topic string, handler domain.MessageHandler) (domain.Subscription, error) {
	if namespace == "" {
		return nil, errNamespaceRequired
	}

	natsSub, err := b.conn.Subscribe(makeSubject(namespace, topic), func(m *nats.Msg) {
		msg, err := decodeNATSMessage(m)
		if err != nil {
			slog.Error("failed to decode NATS message", "subject", m.Subject, "error", err)
			return
		}
		if err := handler(ctx, msg); err != nil {
			slog.Error("handler error", "subject", m.Subject, "message_id", msg.ID, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	sub := &natsSubscription{topic: topic, sub: natsSub, bus: b}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub, nil
}

// Ping flushes the connection to confirm the server is reachable.
func (b *NATSBus) Ping(ctx context.Context) error {
	if !b.conn.IsConnected() {
		return fmt.Errorf("NATS not connected: %s", b.conn.Status())
	}
	return b.conn.FlushWithContext(ctx)
}

// Close drains pending messages and closes the connection.
func (b *NATSBus) Close() error {
	b.mu.Lock()
	b.subs = make(map[*natsSubscription]struct{})
	b.mu.Unlock()

	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

// SubscriberCount returns the number of live subscriptions.
func (b *NATSBus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Stats returns NATS connection statistics.
func (b *NATSBus) Stats() nats.Statistics {
	return b.conn.Stats()
}

// Unsubscribe stops delivery to this subscription.
func (s *natsSubscription) Unsubscribe() error {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
	return s.sub.Unsubscribe()
}

// Topic returns the subscribed topic.
func (s *natsSubscription) Topic() string {
	return s.topic
}

// makeSubject scopes a topic to its namespace.
func makeSubject(namespace, topic string) string {
	return namespace + "." + topic
}

func encodeNATSMessage(msg *domain.Message) (*nats.Msg, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	out := nats.NewMsg(makeSubject(msg.Namespace, msg.Topic))
	out.Header.Set(headerMessageID, msg.ID)
	out.Data = data
	return out, nil
}

func decodeNATSMessage(m *nats.Msg) (*domain.Message, error) {
	var msg domain.Message
	if err := json.Unmarshal(m.Data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.ID == "" {
		msg.ID = m.Header.Get(headerMessageID)
	}
	return &msg, nil
}
