// Package store owns the persistent record of identity providers and when
// each was last observed operating correctly.
//
// The Store interface is the single handle shared by the health prober,
// the observation synchronizer, and the write-API handlers. It is passed
// to each component at construction time; only the server lifecycle may
// close it, and the shutdown coordinator guarantees nothing that depends
// on it closes after it.
//
// Two SQLite drivers are supported: mattn/go-sqlite3 (cgo) and
// modernc.org/sqlite (pure Go), selected by configuration. An in-memory
// implementation backs tests.
package store
