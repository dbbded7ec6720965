// Package events provides the in-process publish/subscribe channel that
// carries "IdP observed online" notifications from detection code to the
// observation synchronizer.
//
// Delivery guarantee: each published event is delivered to every active
// subscription exactly once, in emission order from a single producer.
// Each subscription runs its handler on a dedicated goroutine, so a slow
// handler delays only its own subscription. Handler panics are recovered
// and logged; they never reach the publisher.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TopicProviderSeen is the topic carrying Observation events published by
// the primary-detection collaborator whenever it confirms an IdP is
// currently functioning. Janus only consumes this topic.
const TopicProviderSeen = "provider.seen.online"

// Observation says providerDomain was observed functioning at ObservedAt.
// Observations carry no identity beyond the tuple and are not deduplicated.
type Observation struct {
	Domain     string
	ObservedAt time.Time
}

// Handler consumes one event from a topic.
type Handler func(Observation)

// defaultBuffer is the per-subscription queue depth. Publishing blocks
// once a subscriber falls this far behind, preserving the exactly-once,
// in-order contract instead of dropping.
const defaultBuffer = 256

// Bus is an in-process topic-based event bus.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]*Subscription
	logger *slog.Logger
	closed bool
}

// Subscription is a handle to an active subscription. Cancel it with
// Unsubscribe; events already queued are still delivered.
type Subscription struct {
	id      string
	topic   string
	bus     *Bus
	ch      chan Observation
	done    chan struct{}
	once    sync.Once
	drained sync.WaitGroup
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		topics: make(map[string][]*Subscription),
		logger: slog.Default().With("component", "events.bus"),
	}
}

// Subscribe registers handler for every event published to topic and
// returns the subscription handle.
func (b *Bus) Subscribe(topic string, handler Handler) *Subscription {
	sub := &Subscription{
		id:    uuid.NewString(),
		topic: topic,
		bus:   b,
		ch:    make(chan Observation, defaultBuffer),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub
	}
	b.topics[topic] = append(b.topics[topic], sub)
	b.mu.Unlock()

	sub.drained.Add(1)
	go sub.deliver(handler, b.logger)

	b.logger.Debug("subscription created", "topic", topic, "subscription_id", sub.id)
	return sub
}

// Publish delivers event to every subscription on topic. It blocks only
// if a subscriber's queue is full.
func (b *Bus) Publish(topic string, event Observation) {
	b.mu.RLock()
	subs := b.topics[topic]
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
			// Unsubscribed while we were blocked; drop for this subscriber.
		}
	}
}

// Close unsubscribes everything and waits for queued events to be handled.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*Subscription
	for _, subs := range b.topics {
		all = append(all, subs...)
	}
	b.topics = make(map[string][]*Subscription)
	b.mu.Unlock()

	for _, sub := range all {
		sub.close()
		sub.drained.Wait()
	}
}

// Unsubscribe cancels the subscription. Events already queued are still
// handled; Unsubscribe returns once the handler goroutine has exited.
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s)
	s.close()
	s.drained.Wait()
}

// ID returns the unique subscription identifier, used in logs.
func (s *Subscription) ID() string { return s.id }

// close signals the delivery goroutine to drain and exit. The event
// channel itself is never closed, so a publisher blocked in select can
// never hit a closed channel.
func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *Subscription) deliver(handler Handler, logger *slog.Logger) {
	defer s.drained.Done()

	for {
		select {
		case event := <-s.ch:
			s.invoke(handler, event, logger)
		case <-s.done:
			// Drain whatever was queued before the cancel, then exit.
			for {
				select {
				case event := <-s.ch:
					s.invoke(handler, event, logger)
				default:
					return
				}
			}
		}
	}
}

// invoke runs the handler for one event, containing any panic. A panicking
// handler must not take down the delivery goroutine or the publisher.
func (s *Subscription) invoke(handler Handler, event Observation, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked",
				"topic", s.topic,
				"subscription_id", s.id,
				"domain", event.Domain,
				"panic", r,
			)
		}
	}()
	handler(event)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			b.topics[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}
