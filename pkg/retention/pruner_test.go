package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"watchtower-hq/janus/pkg/config"
	"watchtower-hq/janus/pkg/store"
)

func TestPruneDeletesOnlyStaleRecords(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	now := time.Now().UTC()
	seed := map[string]time.Time{
		"stale.example.com":    now.AddDate(0, 0, -120),
		"boundary.example.com": now.AddDate(0, 0, -89),
		"fresh.example.com":    now,
	}
	for domain, seen := range seed {
		if err := st.UpsertLastSeen(ctx, domain, seen); err != nil {
			t.Fatalf("seed %s: %v", domain, err)
		}
	}

	p := New(st, config.RetentionConfig{Enabled: true, Days: 90, Schedule: "0 3 * * *"}, nil)

	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, ok := st.LastSeen("stale.example.com"); ok {
		t.Error("stale record survived pruning")
	}
	for _, domain := range []string{"boundary.example.com", "fresh.example.com"} {
		if _, ok := st.LastSeen(domain); !ok {
			t.Errorf("%s was pruned but is inside the retention window", domain)
		}
	}
}

func TestStartDisabledIsNoOp(t *testing.T) {
	st := store.NewMemoryStore()
	p := New(st, config.RetentionConfig{Enabled: false, Days: 90, Schedule: "not a schedule"}, nil)

	// Disabled retention never parses the schedule.
	if err := p.Start(); err != nil {
		t.Fatalf("Start with retention disabled: %v", err)
	}
	p.Stop()
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	st := store.NewMemoryStore()
	p := New(st, config.RetentionConfig{Enabled: true, Days: 90, Schedule: "every sometimes"}, nil)

	if err := p.Start(); err == nil {
		t.Fatal("Start accepted an invalid schedule")
	}
}

func TestStopWithoutStart(t *testing.T) {
	st := store.NewMemoryStore()
	p := New(st, config.RetentionConfig{Enabled: true, Days: 90, Schedule: "0 3 * * *"}, nil)
	p.Stop() // must not block or panic
}

func TestRunOnceReportsPrunedCount(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	if err := st.UpsertLastSeen(ctx, "old.example.com", time.Now().AddDate(0, 0, -400)); err != nil {
		t.Fatal(err)
	}

	var reported int64 = -1
	p := New(st, config.RetentionConfig{Enabled: true, Days: 90, Schedule: "0 3 * * *"},
		func(n int64) { reported = n })

	p.runOnce(ctx)

	if reported != 1 {
		t.Errorf("onPruned got %d, want 1", reported)
	}
}

func TestRunOnceSwallowsStoreFailure(t *testing.T) {
	st := store.NewMemoryStore()
	st.Fail(errors.New("disk gone"))

	called := false
	p := New(st, config.RetentionConfig{Enabled: true, Days: 90, Schedule: "0 3 * * *"},
		func(int64) { called = true })

	p.runOnce(context.Background())

	if called {
		t.Error("onPruned must not fire when pruning fails")
	}
}
