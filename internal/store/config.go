// Package store wires the durable SQLite store: a single-writer handle, a
// pooled reader handle, and the append-only history database, per spec.md
// §4.A. Migrations are embedded and applied at startup; migration failure
// is fatal.
package store

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Config holds durable-store configuration, sourced from the --database-dir
// / --sqlite-in-ram CLI flags (spec.md §6).
type Config struct {
	// DatabaseDir holds current.db and history.db. Ignored when InRAM is set.
	DatabaseDir string
	// InRAM runs both databases as in-memory SQLite (debug only, per
	// spec.md §6 "--sqlite-in-ram (debug only)"). The writer connection's
	// pool must never recycle, or an in-memory database is dropped between
	// commands (spec.md §4.A).
	InRAM bool
	// ReplicatorConfigured disables SQLite's own WAL checkpointing so an
	// external replicator owns it (spec.md §4.A).
	ReplicatorConfigured bool
}

// currentDBSource returns the current.db DSN-ish path fragment, or the
// in-memory marker.
func (c Config) currentDBSource(readOnly bool) string {
	if c.InRAM {
		// A named in-memory database is required so the writer and reader
		// pools share the same database instead of each getting their own.
		return "file:corectl_current?mode=memory&cache=shared"
	}
	mode := ""
	if readOnly {
		mode = "&mode=ro"
	}
	return fmt.Sprintf("file:%s?cache=shared%s", filepath.Join(c.DatabaseDir, "current.db"), mode)
}

func (c Config) historyDBSource() string {
	if c.InRAM {
		return "file:corectl_history?mode=memory&cache=shared"
	}
	return fmt.Sprintf("file:%s?cache=shared", filepath.Join(c.DatabaseDir, "history.db"))
}

// readerPoolSize mirrors the teacher's connection-pool sizing in
// pkg/database/config.go, here fixed to the core count per spec.md §4.A
// ("readers use a pool sized to the core count").
func readerPoolSize() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// pragmas returns the PRAGMA statements openPragmaDB executes when a pool
// is opened, per spec.md §4.A's WAL discipline.
func (c Config) pragmas() []string {
	p := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	if c.ReplicatorConfigured {
		p = append(p, "PRAGMA wal_autocheckpoint=0")
	}
	return p
}
