package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests. It can be made to fail
// on demand to exercise liveness and write-failure paths.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]time.Time
	closed  bool
	failErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]time.Time)}
}

// Fail makes every subsequent operation return err. Passing nil restores
// normal operation.
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return m.failErr
}

func (m *MemoryStore) UpsertLastSeen(ctx context.Context, domain string, observedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.failErr != nil {
		return m.failErr
	}
	if domain == "" {
		return ErrEmptyDomain
	}
	m.records[domain] = observedAt
	return nil
}

func (m *MemoryStore) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	if m.failErr != nil {
		return 0, m.failErr
	}
	var deleted int64
	for domain, seen := range m.records {
		if seen.Before(cutoff) {
			delete(m.records, domain)
			deleted++
		}
	}
	return deleted, nil
}

// LastSeen returns the recorded observation time and whether the domain
// has a record.
func (m *MemoryStore) LastSeen(domain string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.records[domain]
	return t, ok
}

// Len returns the number of records.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
