package appstate

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		DatabaseDir: t.TempDir(),
		SQLiteInRAM: true,
		Socket:      config.SocketConfig{ListenAddr: ":0"},
		Location: config.LocationConfig{
			LatTopLeft:        10,
			LonTopLeft:        10,
			LatBottomRight:    0,
			LonBottomRight:    20,
			IndexCellSquareKm: 1,
		},
		Moderation: config.ModerationConfig{
			PageSize:            10,
			Concurrency:         1,
			ExpectedAcceptToken: "ACCEPT",
		},
	}
	return cfg
}

func TestNewWithNoComponentsEnabled(t *testing.T) {
	cfg := testConfig(t)

	s, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	assert.Nil(t, s.AccountService)
	assert.Nil(t, s.ProfileService)
	assert.Nil(t, s.MediaService)
	assert.NotNil(t, s.ModerationService)
	assert.NotNil(t, s.NewsService)
	assert.NotNil(t, s.Server)
	assert.Len(t, s.ModerationWorkers, 3)
}

func TestNewWithAllComponentsEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Components = config.ComponentsConfig{Account: true, Profile: true, Media: true, Chat: true}

	s, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	assert.NotNil(t, s.AccountService)
	assert.NotNil(t, s.ProfileService)
	assert.NotNil(t, s.MediaService)
	assert.NoError(t, s.Server.ValidateWiring())
}

func TestNewCreatesMediaOutputDirectory(t *testing.T) {
	cfg := testConfig(t)

	s, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	fi, err := os.Stat(mediaOutputDir(cfg))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}
