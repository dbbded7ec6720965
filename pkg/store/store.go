package store

import (
	"context"
	"errors"
	"time"
)

// Record is a persisted IdP record: the provider domain and the wall-clock
// time it was last observed functioning. Records are keyed by domain.
type Record struct {
	Domain   string
	LastSeen time.Time
}

// Store is the handle to the persistent IdP record store.
//
// UpsertLastSeen issues an independent, unsequenced write per call:
// concurrent writes for the same domain may complete in any order, so the
// persisted LastSeen can regress between racing observations. That is the
// accepted behavior of the observation path; callers wanting monotonic
// timestamps must serialize their own writes.
type Store interface {
	// Ping reports whether the store currently responds to requests.
	Ping(ctx context.Context) error

	// UpsertLastSeen records that domain was observed functioning at
	// observedAt, inserting or overwriting its record.
	UpsertLastSeen(ctx context.Context, domain string, observedAt time.Time) error

	// DeleteSeenBefore removes all records whose LastSeen is older than
	// cutoff and returns the number removed.
	DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the underlying connection. Operations after Close
	// return ErrClosed.
	Close() error
}

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrEmptyDomain is returned when an upsert names no domain.
	ErrEmptyDomain = errors.New("store: empty provider domain")
)
