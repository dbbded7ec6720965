package health

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"watchtower-hq/janus/pkg/store"
)

// Snapshot is the result of the most recent store probe. It is replaced
// wholesale on every probe cycle.
type Snapshot struct {
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checked_at"`
	LastError string    `json:"last_error,omitempty"`
}

// Gate periodically probes the store and exposes the latest Snapshot.
// Probe failures are logged and recorded but never returned to any
// caller; the gate keeps probing so the signal self-heals when the store
// recovers.
type Gate struct {
	store    store.Store
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	onProbe  func(healthy bool)

	snapshot atomic.Pointer[Snapshot]

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewGate creates a gate probing st every interval, bounding each probe by
// timeout. onProbe, if non-nil, is called with each probe outcome (used
// for metrics).
func NewGate(st store.Store, interval, timeout time.Duration, onProbe func(healthy bool)) *Gate {
	g := &Gate{
		store:    st,
		interval: interval,
		timeout:  timeout,
		logger:   slog.Default().With("component", "health.gate"),
		onProbe:  onProbe,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	// Until the first probe completes the service is not healthy; the
	// lifecycle probes once synchronously before declaring Ready.
	g.snapshot.Store(&Snapshot{Healthy: false, CheckedAt: time.Now(), LastError: "not yet probed"})
	return g
}

// Start launches the probe loop. The first probe runs immediately.
func (g *Gate) Start() {
	g.startOnce.Do(func() {
		g.started.Store(true)
		go g.loop()
	})
}

// Stop halts the probe loop and waits for it to exit. Safe to call more
// than once. The last Snapshot remains readable after Stop.
func (g *Gate) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})
	if g.started.Load() {
		<-g.doneCh
	}
}

// Snapshot returns the latest probe result. Lock-free.
func (g *Gate) Snapshot() Snapshot {
	return *g.snapshot.Load()
}

// Probe performs one store liveness check and updates the snapshot. The
// failure, if any, is reflected in the returned Snapshot rather than
// returned as an error.
func (g *Gate) Probe(ctx context.Context) Snapshot {
	probeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	snap := Snapshot{Healthy: true, CheckedAt: time.Now()}

	if err := g.store.Ping(probeCtx); err != nil {
		snap.Healthy = false
		snap.LastError = err.Error()
		g.logger.Warn("store liveness probe failed", "error", err)
	}

	previous := g.snapshot.Swap(&snap)
	if previous != nil && previous.Healthy != snap.Healthy {
		if snap.Healthy {
			g.logger.Info("store is reachable again")
		} else {
			g.logger.Error("store became unreachable", "error", snap.LastError)
		}
	}

	if g.onProbe != nil {
		g.onProbe(snap.Healthy)
	}
	return snap
}

func (g *Gate) loop() {
	defer close(g.doneCh)

	g.Probe(context.Background())

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.Probe(context.Background())
		case <-g.stopCh:
			return
		}
	}
}
