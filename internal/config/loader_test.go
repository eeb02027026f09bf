package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "corectld.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[socket]
listen_addr = ":9443"

[location]
lat_top_left = 52.5
lon_top_left = 13.3
lat_bottom_right = 52.4
lon_bottom_right = 13.5
index_cell_square_km = 2.0
`)

	cfg, err := Load(path, CLIOverrides{DatabaseDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, ":9443", cfg.Socket.ListenAddr)
	assert.Equal(t, 2.0, cfg.Location.IndexCellSquareKm)
	// Moderation defaults survive since the file never mentions them.
	assert.Equal(t, 50, cfg.Moderation.PageSize)
	assert.Equal(t, 8, cfg.Moderation.Concurrency)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_SLACK_TOKEN", "xoxb-secret")
	path := writeTempConfig(t, `
[location]
lat_top_left = 1
lon_top_left = 1
lat_bottom_right = 0
lon_bottom_right = 0

[external_services]
slack_token = "${TEST_SLACK_TOKEN}"
slack_channel = "#alerts"
`)

	cfg, err := Load(path, CLIOverrides{SQLiteInRAM: true})
	require.NoError(t, err)
	assert.Equal(t, "xoxb-secret", cfg.ExternalServices.SlackToken)
}

func TestLoadFailsWithoutDatabaseDirOrInRAM(t *testing.T) {
	path := writeTempConfig(t, `
[location]
lat_top_left = 1
lon_top_left = 1
lat_bottom_right = 0
lon_bottom_right = 0
`)

	_, err := Load(path, CLIOverrides{})
	assert.Error(t, err)
}

func TestLoadRejectsDegenerateLocation(t *testing.T) {
	path := writeTempConfig(t, `
[location]
lat_top_left = 1
lon_top_left = 1
lat_bottom_right = 1
lon_bottom_right = 1
`)

	_, err := Load(path, CLIOverrides{SQLiteInRAM: true})
	assert.Error(t, err)
}
