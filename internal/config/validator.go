package config

import "fmt"

// validate performs fail-fast structural checks, mirroring the teacher's
// Validator.ValidateAll "stop at first error" contract, collapsed to a
// single function since this config has far fewer cross-referencing
// sections than the teacher's agent/chain/MCP registries.
func validate(cfg *Config) error {
	if cfg.Socket.ListenAddr == "" {
		return fmt.Errorf("socket.listen_addr must not be empty")
	}

	if err := validateLocation(cfg.Location); err != nil {
		return fmt.Errorf("location: %w", err)
	}

	if err := validateModeration(cfg.Moderation); err != nil {
		return fmt.Errorf("moderation: %w", err)
	}

	if !cfg.HasDatabaseDir() && !cfg.SQLiteInRAM {
		return fmt.Errorf("--database-dir is required unless --sqlite-in-ram is set")
	}

	return nil
}

func validateLocation(l LocationConfig) error {
	if l.LatTopLeft == l.LatBottomRight && l.LonTopLeft == l.LonBottomRight {
		return fmt.Errorf("corners must describe a non-degenerate rectangle")
	}
	if l.IndexCellSquareKm <= 0 {
		return fmt.Errorf("index_cell_square_km must be positive, got %v", l.IndexCellSquareKm)
	}
	return nil
}

func validateModeration(m ModerationConfig) error {
	if m.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", m.PageSize)
	}
	if m.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", m.Concurrency)
	}
	return nil
}

// HasDatabaseDir reports whether a database directory was supplied via CLI
// flags.
func (c *Config) HasDatabaseDir() bool {
	return c.DatabaseDir != ""
}
