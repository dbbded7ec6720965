// Package observer persists "IdP observed online" events.
//
// The Synchronizer subscribes to the provider.seen.online topic and issues
// one fire-and-forget store write per event. No caller waits on a write
// and writes are not sequenced relative to each other, so concurrent
// events for the same domain may persist in any order; a late record is
// an accepted degradation. A write failure is logged with the domain and
// dropped: never retried, never re-queued, never surfaced to the event
// source. Nothing may panic out of the event handler.
package observer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"watchtower-hq/janus/pkg/events"
	"watchtower-hq/janus/pkg/store"
)

// writeTimeout bounds each individual store write. A write is never
// cancelled once issued; it completes or fails within this bound.
const writeTimeout = 10 * time.Second

// Synchronizer records observation events into the store.
type Synchronizer struct {
	store   store.Store
	logger  *slog.Logger
	onWrite func(ok bool)

	sub *events.Subscription

	// inflight tracks fire-and-forget writes so shutdown can drain them
	// before the store handle closes.
	inflight sync.WaitGroup
}

// New creates a synchronizer writing to st. onWrite, if non-nil, receives
// each write outcome (used for metrics).
func New(st store.Store, onWrite func(ok bool)) *Synchronizer {
	return &Synchronizer{
		store:   st,
		logger:  slog.Default().With("component", "observer"),
		onWrite: onWrite,
	}
}

// Subscribe attaches the synchronizer to the bus. Each delivered event
// spawns one independent write.
func (s *Synchronizer) Subscribe(bus *events.Bus) {
	s.sub = bus.Subscribe(events.TopicProviderSeen, s.handle)
	s.logger.Info("subscribed to observation events", "topic", events.TopicProviderSeen)
}

// handle processes one event. It returns immediately; the write proceeds
// on its own goroutine with no one waiting on the outcome.
func (s *Synchronizer) handle(event events.Observation) {
	if event.Domain == "" {
		s.logger.Warn("dropping observation with empty domain")
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic during observation write",
					"domain", event.Domain, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		err := s.store.UpsertLastSeen(ctx, event.Domain, event.ObservedAt)
		if err != nil {
			// Dropped, not retried: losing one observation delays the
			// record by a cycle, which beats wedging the synchronizer.
			s.logger.Error("failed to record observation",
				"domain", event.Domain,
				"observed_at", event.ObservedAt,
				"error", err,
			)
		}
		if s.onWrite != nil {
			s.onWrite(err == nil)
		}
	}()
}

// Close cancels the subscription and waits for in-flight writes, bounded
// by ctx. This is the local worker pool the drain order stops before the
// store handle closes.
func (s *Synchronizer) Close(ctx context.Context) error {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("observation writes drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
