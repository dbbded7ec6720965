// Package retention removes IdP records that have not been observed for a
// configured number of days, on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"watchtower-hq/janus/pkg/config"
	"watchtower-hq/janus/pkg/store"
)

// Pruner deletes stale IdP records on a schedule.
type Pruner struct {
	store    store.Store
	cfg      config.RetentionConfig
	cron     *cron.Cron
	logger   *slog.Logger
	onPruned func(n int64)

	mu      sync.Mutex
	running bool
}

// New creates a pruner against st. onPruned, if non-nil, receives the
// number of records removed by each run (used for metrics).
func New(st store.Store, cfg config.RetentionConfig, onPruned func(n int64)) *Pruner {
	return &Pruner{
		store:    st,
		cfg:      cfg,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "retention"),
		onPruned: onPruned,
	}
}

// Start schedules pruning runs. Does nothing when retention is disabled.
func (p *Pruner) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.cfg.Enabled {
		p.logger.Info("retention disabled, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", p.cfg.Schedule, err)
	}

	if _, err := p.cron.AddFunc(p.cfg.Schedule, func() {
		p.runOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("retention scheduler started",
		"schedule", p.cfg.Schedule,
		"retention_days", p.cfg.Days,
	)
	return nil
}

// Stop halts the scheduler, waiting for a run in progress to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.running = false
	<-p.cron.Stop().Done()
	p.logger.Info("retention scheduler stopped")
}

// Prune deletes records older than the retention window once, outside the
// schedule. Used by the scheduler and by tests.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.cfg.Days)
	return p.store.DeleteSeenBefore(ctx, cutoff)
}

func (p *Pruner) runOnce(ctx context.Context) {
	deleted, err := p.Prune(ctx)
	if err != nil {
		p.logger.Error("retention pruning failed", "error", err)
		return
	}

	p.logger.Info("retention pruning completed",
		"deleted", deleted,
		"retention_days", p.cfg.Days,
	)
	if p.onPruned != nil {
		p.onPruned(deleted)
	}
}
