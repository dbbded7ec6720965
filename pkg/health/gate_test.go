package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"watchtower-hq/janus/pkg/store"
)

func TestProbeHealthy(t *testing.T) {
	g := NewGate(store.NewMemoryStore(), time.Second, 100*time.Millisecond, nil)

	snap := g.Probe(context.Background())
	if !snap.Healthy {
		t.Errorf("Healthy = false, want true")
	}
	if snap.LastError != "" {
		t.Errorf("LastError = %q, want empty", snap.LastError)
	}
	if g.Snapshot() != snap {
		t.Error("Snapshot() should return the latest probe result")
	}
}

func TestProbeFailureAndRecovery(t *testing.T) {
	st := store.NewMemoryStore()
	g := NewGate(st, time.Second, 100*time.Millisecond, nil)

	st.Fail(errors.New("connection refused"))
	snap := g.Probe(context.Background())
	if snap.Healthy {
		t.Fatal("Healthy = true while store failing")
	}
	if snap.LastError == "" {
		t.Error("LastError should carry the probe failure")
	}

	st.Fail(nil)
	snap = g.Probe(context.Background())
	if !snap.Healthy {
		t.Error("Healthy = false after store recovered")
	}
	if snap.LastError != "" {
		t.Errorf("LastError = %q after recovery, want empty", snap.LastError)
	}
}

func TestInitialSnapshotUnhealthy(t *testing.T) {
	g := NewGate(store.NewMemoryStore(), time.Second, 100*time.Millisecond, nil)
	if g.Snapshot().Healthy {
		t.Error("gate should not report healthy before the first probe")
	}
}

func TestProbeLoopRuns(t *testing.T) {
	st := store.NewMemoryStore()

	var mu sync.Mutex
	probes := 0
	g := NewGate(st, 20*time.Millisecond, 10*time.Millisecond, func(bool) {
		mu.Lock()
		probes++
		mu.Unlock()
	})

	g.Start()
	time.Sleep(120 * time.Millisecond)
	g.Stop()

	mu.Lock()
	defer mu.Unlock()
	if probes < 3 {
		t.Errorf("probe loop ran %d times in 120ms at 20ms interval, want >= 3", probes)
	}
}

func TestStopIdempotentAndWithoutStart(t *testing.T) {
	g := NewGate(store.NewMemoryStore(), time.Second, 100*time.Millisecond, nil)
	g.Stop() // never started: must not block
	g.Stop()

	g2 := NewGate(store.NewMemoryStore(), time.Second, 100*time.Millisecond, nil)
	g2.Start()
	g2.Stop()
	g2.Stop()
}

func TestProbeRespectsTimeout(t *testing.T) {
	st := &slowStore{MemoryStore: store.NewMemoryStore(), delay: 500 * time.Millisecond}
	g := NewGate(st, time.Second, 50*time.Millisecond, nil)

	start := time.Now()
	snap := g.Probe(context.Background())
	elapsed := time.Since(start)

	if snap.Healthy {
		t.Error("probe against a hanging store should be unhealthy")
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("probe took %v, should be bounded near the 50ms timeout", elapsed)
	}
}

// slowStore delays Ping until the context expires.
type slowStore struct {
	*store.MemoryStore
	delay time.Duration
}

func (s *slowStore) Ping(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
