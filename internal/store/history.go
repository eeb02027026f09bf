package store

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// History is the append-only history.db log: a change-auditable-entity
// write-behind trail, kept as plain database/sql rather than an ent graph
// since it is insert-and-scan only and never updated (spec.md §4.A "an
// optional history row is appended for change-auditable entities").
type History struct {
	db *stdsql.DB
}

func openHistory(cfg Config) (*History, error) {
	db, err := openPragmaDB(cfg, cfg.historyDBSource(), 1, cfg.InRAM)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS history_event (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history_event table: %w", err)
	}
	return &History{db: db}, nil
}

// Close closes the underlying connection.
func (h *History) Close() error { return h.db.Close() }

// Append records one change-auditable event. Kind is a short machine label
// ("account.state_changed", "content.moderated", ...); payload is any
// JSON-marshalable value.
func (h *History) Append(ctx context.Context, accountID string, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal history payload: %w", err)
	}
	_, err = h.db.ExecContext(ctx,
		`INSERT INTO history_event (account_id, kind, payload, recorded_at) VALUES (?, ?, ?, ?)`,
		accountID, kind, string(body), time.Now().UTC())
	return err
}
