package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDrainRunsHooksInOrder(t *testing.T) {
	c := NewCoordinator(time.Second)

	var order []string
	for _, name := range []string{"workers", "store", "sampler"} {
		c.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	c.Drain()

	want := []string{"workers", "store", "sampler"}
	if len(order) != len(want) {
		t.Fatalf("ran %d hooks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("hook %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestDrainIsIdempotent(t *testing.T) {
	c := NewCoordinator(time.Second)

	var mu sync.Mutex
	calls := 0
	c.Register("store", func(ctx context.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	// Two termination signals 10ms apart: hooks run exactly once.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.Drain() }()
	time.Sleep(10 * time.Millisecond)
	go func() { defer wg.Done(); c.Drain() }()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("hook ran %d times across two drains, want 1", calls)
	}
}

func TestDrainContinuesPastFailingHook(t *testing.T) {
	c := NewCoordinator(time.Second)

	var order []string
	c.Register("failing", func(ctx context.Context) error {
		order = append(order, "failing")
		return errors.New("refused to close")
	})
	c.Register("after", func(ctx context.Context) error {
		order = append(order, "after")
		return nil
	})

	c.Drain()

	if len(order) != 2 || order[1] != "after" {
		t.Errorf("order = %v, want the hook after the failure to run", order)
	}
}

func TestDrainTimeoutForcesTermination(t *testing.T) {
	c := NewCoordinator(50 * time.Millisecond)

	ranLate := false
	c.Register("hanging", func(ctx context.Context) error {
		<-ctx.Done() // honors the deadline but too slow
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	c.Register("late", func(ctx context.Context) error {
		ranLate = true
		return nil
	})

	start := time.Now()
	c.Drain()
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("Drain took %v, should return near the 50ms deadline", elapsed)
	}
	if ranLate {
		t.Error("hooks after the deadline should not run")
	}
}
