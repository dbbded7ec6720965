package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Hook is one dependency's shutdown step. Close must respect ctx and
// return promptly once it is done.
type Hook struct {
	Name  string
	Close func(ctx context.Context) error
}

// Coordinator orchestrates an ordered, bounded drain. Hooks run in
// registration order; the order is load-bearing: anything producing store
// writes must be registered before the store handle, and nothing relying
// on the store may be registered after it.
//
// The whole drain is bounded by a single timeout. A hook that fails or
// outlives the deadline is logged by name and the drain continues
// best-effort. A second drain request is a no-op.
type Coordinator struct {
	hooks   []Hook
	timeout time.Duration
	logger  *slog.Logger
	once    sync.Once
}

// NewCoordinator creates a coordinator with the given drain timeout.
func NewCoordinator(timeout time.Duration) *Coordinator {
	return &Coordinator{
		timeout: timeout,
		logger:  slog.Default().With("component", "shutdown"),
	}
}

// Register appends a hook. Not safe to call once Drain may run.
func (c *Coordinator) Register(name string, close func(ctx context.Context) error) {
	c.hooks = append(c.hooks, Hook{Name: name, Close: close})
}

// Drain runs every hook exactly once, in order, under one shared
// deadline. Subsequent calls return immediately without re-invoking any
// hook.
func (c *Coordinator) Drain() {
	c.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		c.logger.Info("draining", "timeout", c.timeout.String(), "hooks", len(c.hooks))

		for _, hook := range c.hooks {
			c.runHook(ctx, hook)

			if ctx.Err() != nil {
				c.logger.Error("drain deadline exceeded, terminating anyway",
					"last_hook", hook.Name)
				return
			}
		}

		c.logger.Info("drain complete")
	})
}

// runHook invokes one hook, bounded by ctx even if the hook ignores it.
func (c *Coordinator) runHook(ctx context.Context, hook Hook) {
	done := make(chan error, 1)
	go func() {
		done <- hook.Close(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			c.logger.Error("shutdown hook failed", "hook", hook.Name, "error", err)
		} else {
			c.logger.Debug("shutdown hook completed", "hook", hook.Name)
		}
	case <-ctx.Done():
		c.logger.Error("shutdown hook did not complete before drain deadline",
			"hook", hook.Name)
	}
}
