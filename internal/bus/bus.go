// Package bus is the synchronous publish/subscribe channel coordinating the
// simulation. Delivery order equals subscription order and each publish
// fully drains before the publisher resumes, so everything triggered by a
// tick happens inside that tick. The bus is deliberately not safe for
// concurrent use: the simulation is single-threaded by design, and any
// asynchronous replacement must reintroduce per-facility mutual exclusion
// around spot reservation.
package bus

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Topic names a notification channel.
type Topic string

// Event is a published notification.
type Event struct {
	Topic     Topic
	Payload   any
	Timestamp time.Time
}

// HandlerFunc consumes an event.
type HandlerFunc func(Event)

// Logger is the pluggable logging interface the bus reports through.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Bus routes events to subscribers in subscription order.
type Bus struct {
	handlers map[Topic][]HandlerFunc
	logger   Logger

	published metric.Int64Counter
	delivered metric.Int64Counter
}

// New creates a Bus with the given logger. Uses the global OTel meter for
// metrics (no-op if not configured).
func New(logger Logger) (*Bus, error) {
	b := &Bus{
		handlers: make(map[Topic][]HandlerFunc),
		logger:   logger,
	}

	m := meter()

	var err error
	b.published, err = m.Int64Counter(
		"bus.events.published",
		metric.WithDescription("Total events published per topic"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	b.delivered, err = m.Int64Counter(
		"bus.events.delivered",
		metric.WithDescription("Total handler deliveries per topic"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivered counter: %w", err)
	}

	return b, nil
}

// Subscribe appends a handler for the topic. Handlers run in subscription
// order on the publisher's goroutine.
func (b *Bus) Subscribe(t Topic, h HandlerFunc) {
	b.handlers[t] = append(b.handlers[t], h)
}

// HasSubscribers reports whether any handler is registered for the topic.
func (b *Bus) HasSubscribers(t Topic) bool {
	return len(b.handlers[t]) > 0
}

// Publish delivers the payload to every subscriber of the topic before
// returning. Nested publishes from handlers drain the same way.
func (b *Bus) Publish(t Topic, payload any) {
	e := Event{Topic: t, Payload: payload, Timestamp: time.Now()}

	attrs := metric.WithAttributes(attribute.String("topic", string(t)))
	b.published.Add(ctx(), 1, attrs)

	hs := b.handlers[t]
	if len(hs) == 0 {
		b.logger.Debug("no subscribers", "topic", t)
		return
	}

	for _, h := range hs {
		h(e)
		b.delivered.Add(ctx(), 1, attrs)
	}
}
