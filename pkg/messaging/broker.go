package messaging

import (
	"context"
	"errors"
)

// ErrClosed is returned by a broker after Close.
var ErrClosed = errors.New("broker closed")

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe delivers raw JSON payloads until ctx is done or the broker
	// is closed, then closes the returned channel.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher is the narrow side of a Broker used by writers.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

type MessageBroker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, handler func([]byte) error) error
	Close() error
}
