package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
)

// CLIOverrides carries the two flags spec.md §6 names outside the TOML
// file.
type CLIOverrides struct {
	DatabaseDir string
	SQLiteInRAM bool
}

// Load reads the TOML file at path, expands `${VAR}` environment
// references in its raw bytes (the teacher's ExpandEnv convention), parses
// it, and merges it over defaultConfig() with mergo so unset fields keep
// their built-in value. CLI overrides are applied last and always win.
func Load(path string, overrides CLIOverrides) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(raw))

	var fileCfg Config
	if err := toml.Unmarshal([]byte(expanded), &fileCfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}

	cfg.DatabaseDir = overrides.DatabaseDir
	cfg.SQLiteInRAM = overrides.SQLiteInRAM

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
