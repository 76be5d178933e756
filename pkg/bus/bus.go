// Package bus provides the in-process topic bus that carries every
// cross-component interaction in riskdesk. Services publish state changes on
// named topics; other services and view adapters subscribe. The bus is the
// only shared medium — no component reaches into another's internals.
package bus

import (
	"sync"

	"github.com/quantora/riskdesk/pkg/logger"
)

// Topic is an opaque string key identifying a logical channel. Uniqueness is
// by convention (hierarchical dotted naming, see topics.go). A given topic
// carries payloads of one shape for the lifetime of the process.
type Topic string

// String implements fmt.Stringer.
func (t Topic) String() string { return string(t) }

// Handler processes a published payload. Handlers should be idempotent on
// repeated identical values.
type Handler func(payload interface{})

// Envelope is the unit transmitted on the bus. It exists only during a
// publish call's synchronous delivery; adapters (e.g. the WebSocket bridge)
// may re-wrap it for the wire.
type Envelope struct {
	Topic   Topic       `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Bus dispatches payloads published on a topic synchronously to every
// registered subscriber of that topic, in subscription order, and remembers
// the latest payload per topic. It is purely in-memory and per-process: no
// buffering, no back-pressure, no delivery across restarts.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]*Subscription
	last   map[Topic]interface{}
	closed bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[Topic][]*Subscription),
		last: make(map[Topic]interface{}),
	}
}

// Subscription is the handle returned by Subscribe. Unsubscribe removes
// exactly this registration and is idempotent.
type Subscription struct {
	bus   *Bus
	topic Topic
	id    uint64
	fn    Handler
}

// Unsubscribe removes the registration. Calling it twice is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[s.topic]
	for i, sub := range list {
		if sub.id == s.id {
			b.subs[s.topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	s.bus = nil
}

// Subscribe registers a handler for a topic. Handlers are invoked
// synchronously during Publish, in subscription order.
func (b *Bus) Subscribe(topic Topic, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{bus: b, topic: topic, id: b.nextID, fn: fn}
	b.subs[topic] = append(b.subs[topic], sub)
	return sub
}

// Publish records payload as the topic's latest value, then synchronously
// invokes every subscriber registered for the topic in subscription order.
// A panicking subscriber is logged and does not block its siblings.
// Publishing to a topic with no subscribers only records the last value.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.last[topic] = payload
	list := b.subs[topic]
	snapshot := make([]*Subscription, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.dispatch(topic, sub, payload)
	}
}

func (b *Bus) dispatch(topic Topic, sub *Subscription, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("bus", "Subscriber panicked", map[string]interface{}{
				"topic": topic.String(),
				"panic": r,
			})
		}
	}()
	sub.fn(payload)
}

// LastValue returns the most recent payload published to the topic, or false
// if none has been published in this process lifetime.
func (b *Bus) LastValue(topic Topic) (interface{}, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.last[topic]
	return v, ok
}

// Close stops dispatch. Subsequent publishes are dropped; existing
// subscriptions become inert.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
}
