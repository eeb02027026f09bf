package store

import (
	"context"
	stdsql "database/sql"
	"embed"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/afrodite-backend/corectl/ent"
)

//go:embed migrations
var migrationsFS embed.FS

// Client wraps the two ent.Client handles over current.db — Writer is a
// single, serialized connection; Reader is a pool sized to the core count
// — plus the append-only History log. Mirrors the split the teacher keeps
// implicit in a single pooled *sql.DB (pkg/database/client.go), made
// explicit here because spec.md §4.A requires two distinct handles with
// different pool shapes.
type Client struct {
	Writer  *ent.Client
	Reader  *ent.Client
	History *History

	writerDB *stdsql.DB
	readerDB *stdsql.DB
}

// Open opens current.db (writer + reader) and history.db, applying
// migrations against the writer connection, and returns a ready Client.
func Open(cfg Config) (*Client, error) {
	writerDB, err := openPragmaDB(cfg, cfg.currentDBSource(false), 1, true)
	if err != nil {
		return nil, fmt.Errorf("open writer handle: %w", err)
	}

	if err := runMigrations(writerDB); err != nil {
		_ = writerDB.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	readerDB, err := openPragmaDB(cfg, cfg.currentDBSource(true), readerPoolSize(), false)
	if err != nil {
		_ = writerDB.Close()
		return nil, fmt.Errorf("open reader handle: %w", err)
	}

	history, err := openHistory(cfg)
	if err != nil {
		_ = writerDB.Close()
		_ = readerDB.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}

	writerDrv := entsql.OpenDB(dialect.SQLite, writerDB)
	readerDrv := entsql.OpenDB(dialect.SQLite, readerDB)

	return &Client{
		Writer:   ent.NewClient(ent.Driver(writerDrv)),
		Reader:   ent.NewClient(ent.Driver(readerDrv)),
		History:  history,
		writerDB: writerDB,
		readerDB: readerDB,
	}, nil
}

// Ping checks the writer connection is reachable, for the health endpoint
// (mirrors the teacher's database.Health, narrowed to the one check that
// applies to an embedded SQLite file: there is no separate network hop to
// probe).
func (c *Client) Ping(ctx context.Context) error {
	return c.writerDB.PingContext(ctx)
}

// Close releases every underlying connection.
func (c *Client) Close() error {
	var firstErr error
	for _, closer := range []func() error{
		c.Writer.Close,
		c.Reader.Close,
		c.History.Close,
	} {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openPragmaDB opens a *sql.DB against source, executes the WAL pragmas
// once through the pool, and configures the pool shape. The pragmas reach
// only the connection that runs them: for the single-connection writer and
// history pools that is every connection, while reader connections opened
// later do not get the per-connection pragmas. When infiniteLife
// is set the pool's connections are never recycled, so an in-memory
// database named via cfg.InRAM is never dropped between commands (spec.md
// §4.A).
func openPragmaDB(cfg Config, source string, poolSize int, infiniteLife bool) (*stdsql.DB, error) {
	db, err := stdsql.Open("sqlite", source)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(poolSize)
	if infiniteLife {
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	for _, pragma := range cfg.pragmas() {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return db, nil
}

// runMigrations applies every embedded migration against the writer
// connection using a custom golang-migrate database.Driver implementation
// (see migrate_sqlite.go) — golang-migrate ships first-party drivers for
// cgo SQLite bindings only, not the pure-Go modernc.org/sqlite driver this
// project uses, so the driver adapter is hand-written against
// golang-migrate's own documented database.Driver interface (see
// DESIGN.md).
func runMigrations(db *stdsql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	defer sourceDriver.Close()

	dbDriver, err := newSQLiteMigrateDriver(db)
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
