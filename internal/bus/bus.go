package bus

import (
	"log/slog"

	"github.com/cskr/pubsub"
)

// subscriberBuffer is the per-subscriber channel capacity. A consumer
// that falls this far behind blocks the broker until it drains.
const subscriberBuffer = 64

type Subscription chan any

// MessageBus is the in-process fan-out channel between producers and
// their consumers. Delivery order is preserved per subscriber; late
// subscribers never see messages published before they subscribed.
type MessageBus interface {
	Publish(topic string, msg any)
	Subscribe(topic string) Subscription
	Unsubscribe(ch Subscription, topics ...string)
	Close()
}

type PubSubBus struct {
	ps     *pubsub.PubSub
	logger *slog.Logger
}

func New(logger *slog.Logger) *PubSubBus {
	if logger == nil {
		logger = slog.Default().With("component", "bus")
	}

	return &PubSubBus{
		ps:     pubsub.New(subscriberBuffer),
		logger: logger,
	}
}

func (b *PubSubBus) Publish(topic string, msg any) {
	b.logger.Debug("publish", "topic", topic)
	b.ps.Pub(msg, topic)
}

func (b *PubSubBus) Subscribe(topic string) Subscription {
	b.logger.Debug("subscribe", "topic", topic)

	return b.ps.Sub(topic)
}

func (b *PubSubBus) Unsubscribe(ch Subscription, topics ...string) {
	if len(topics) == 0 {
		b.ps.Unsub(ch)
		return
	}
	b.ps.Unsub(ch, topics...)
}

// Close shuts the broker down and closes every subscriber channel.
func (b *PubSubBus) Close() {
	b.ps.Shutdown()
}
