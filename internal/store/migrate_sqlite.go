package store

import (
	stdsql "database/sql"
	"fmt"
	"io"

	"github.com/golang-migrate/migrate/v4/database"
)

// sqliteMigrateDriver implements golang-migrate's database.Driver interface
// on top of the writer connection opened with modernc.org/sqlite. It exists
// because golang-migrate's own "sqlite3" driver is built on the cgo
// mattn/go-sqlite3 binding, which this project does not use (see
// DESIGN.md) — golang-migrate documents implementing database.Driver
// against any database/sql connection as the supported extension path.
type sqliteMigrateDriver struct {
	db *stdsql.DB
}

func newSQLiteMigrateDriver(db *stdsql.DB) (database.Driver, error) {
	d := &sqliteMigrateDriver{db: db}
	if err := d.ensureVersionTable(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *sqliteMigrateDriver) ensureVersionTable() error {
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT NOT NULL PRIMARY KEY,
		dirty BOOLEAN NOT NULL
	)`)
	return err
}

// Open and Close are no-ops: the *sql.DB lifetime is owned by the caller
// (store.Client), not by golang-migrate, matching the teacher's own note
// in pkg/database/client.go about not letting migrate close a shared DB.
func (d *sqliteMigrateDriver) Open(_ string) (database.Driver, error) { return d, nil }
func (d *sqliteMigrateDriver) Close() error                           { return nil }

func (d *sqliteMigrateDriver) Lock() error   { return nil } // single-writer handle already serializes access
func (d *sqliteMigrateDriver) Unlock() error { return nil }

func (d *sqliteMigrateDriver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	if _, err := d.db.Exec(string(body)); err != nil {
		return fmt.Errorf("run migration: %w", err)
	}
	return nil
}

func (d *sqliteMigrateDriver) SetVersion(version int, dirty bool) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations"); err != nil {
		_ = tx.Rollback()
		return err
	}
	if version >= 0 {
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)", version, dirty); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (d *sqliteMigrateDriver) Version() (version int, dirty bool, err error) {
	row := d.db.QueryRow("SELECT version, dirty FROM schema_migrations LIMIT 1")
	err = row.Scan(&version, &dirty)
	if err == stdsql.ErrNoRows {
		return -1, false, nil
	}
	return version, dirty, err
}

func (d *sqliteMigrateDriver) Drop() error {
	_, err := d.db.Exec("DELETE FROM schema_migrations")
	return err
}
