package messaging

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jwalitptl/dentalcare/pkg/logger"
)

var errInvalidPayload = errors.New("payload is not valid JSON")

// BrokerAdapter turns a channel-based Broker into a callback-based MessageBroker.
type BrokerAdapter struct {
	broker Broker
	logger *logger.Logger
}

func NewBrokerAdapter(broker Broker, log *logger.Logger) *BrokerAdapter {
	if log == nil {
		log = logger.Nop()
	}
	return &BrokerAdapter{broker: broker, logger: log}
}

// Publish forwards an already encoded payload without re-encoding it.
func (a *BrokerAdapter) Publish(ctx context.Context, topic string, payload []byte) error {
	if !json.Valid(payload) {
		return errInvalidPayload
	}
	return a.broker.Publish(ctx, topic, json.RawMessage(payload))
}

func (a *BrokerAdapter) Close() error {
	return a.broker.Close()
}

// Subscribe runs handler for every message on topic until ctx is done.
// Handler errors are logged and do not stop delivery.
func (a *BrokerAdapter) Subscribe(ctx context.Context, topic string, handler func([]byte) error) error {
	msgChan, err := a.broker.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgChan {
			if err := handler(msg); err != nil {
				a.logger.Error(err, "message handler failed", "topic", topic)
			}
		}
	}()

	return nil
}
