package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"watchtower-hq/janus/pkg/config"

	_ "github.com/mattn/go-sqlite3" // driver "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // driver "sqlite" (pure Go)
)

// schema creates the IdP record table. last_seen is stored as a
// fixed-width RFC 3339 UTC string so SQL string comparison matches time
// order. A variable-width fraction would not: RFC3339Nano trims trailing
// zeros, and "…00.1Z" sorts after "…00.15Z".
const schema = `
CREATE TABLE IF NOT EXISTS idp_records (
    domain    TEXT PRIMARY KEY,
    last_seen TIMESTAMP NOT NULL
);
`

// timeLayout pads the fraction to nine digits. Timestamps are normalized
// to UTC before formatting so the zone suffix is always "Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	closed atomic.Bool
}

// OpenSQLite opens (creating if necessary) the SQLite database described
// by cfg and initializes the schema. The returned store is ready for
// concurrent use; database/sql plus the busy timeout serialize access.
func OpenSQLite(cfg config.StoreConfig) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q with driver %q: %w", cfg.Path, cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteStore{db: db, logger: logger}

	if err := s.initialize(cfg); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite store opened",
		"driver", cfg.Driver,
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
	)

	return s, nil
}

func (s *SQLiteStore) initialize(cfg config.StoreConfig) error {
	if cfg.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("store: enable WAL: %w", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("store: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}

	return nil
}

// Ping reports whether the database currently responds.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

// UpsertLastSeen inserts or overwrites the record for domain.
func (s *SQLiteStore) UpsertLastSeen(ctx context.Context, domain string, observedAt time.Time) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if domain == "" {
		return ErrEmptyDomain
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO idp_records (domain, last_seen) VALUES (?, ?)
		 ON CONFLICT(domain) DO UPDATE SET last_seen = excluded.last_seen`,
		domain, observedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("store: upsert %q: %w", domain, err)
	}
	return nil
}

// DeleteSeenBefore removes records last seen before cutoff.
func (s *SQLiteStore) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM idp_records WHERE last_seen < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("store: delete before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: rows affected: %w", err)
	}
	return deleted, nil
}

// LastSeen returns the recorded observation time for domain, or
// sql.ErrNoRows if the domain has never been observed. Used by tests and
// the retention pruner; the write API deliberately exposes no read route.
func (s *SQLiteStore) LastSeen(ctx context.Context, domain string) (time.Time, error) {
	if s.closed.Load() {
		return time.Time{}, ErrClosed
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_seen FROM idp_records WHERE domain = ?`, domain,
	).Scan(&raw)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse last_seen %q: %w", raw, err)
	}
	return t, nil
}

// Close closes the database. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.logger.Info("sqlite store closed")
	return s.db.Close()
}
