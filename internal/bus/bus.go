package bus

import (
	"errors"
	"fmt"

	"github.com/opensource-finance/defaultdesk/internal/domain"
)

var (
	errNamespaceRequired = errors.New("namespace is required")
	errBusClosed         = errors.New("bus is closed")
)

// New creates the event bus described by cfg.
//   - "channel": in-process Go channels
//   - "nats": NATS, shared between replicas
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "", "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}

func newMessage(id, namespace, topic string, payload []byte, ts int64) *domain.Message {
	return &domain.Message{
		ID:        id,
		Namespace: namespace,
		Topic:     topic,
		Payload:   payload,
		Metadata:  make(map[string]string),
		Timestamp: ts,
	}
}
