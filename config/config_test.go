package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "data/leave.db", cfg.Database.Path)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Empty(t, cfg.Blackouts)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  read_timeout: 10s
database:
  path: /tmp/test-leave.db
blackouts:
  - name: Year-End
    start: "2025-11-15"
    end: "2025-12-31"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/tmp/test-leave.db", cfg.Database.Path)

	periods := cfg.BlackoutPeriods()
	require.Len(t, periods, 1)
	assert.Equal(t, "Year-End", periods[0].Name)
	assert.Equal(t, time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC), periods[0].Start)
	// Stable ID so re-persisting at startup upserts instead of duplicating.
	assert.Equal(t, "year-end-2025-11-15", periods[0].ID)
}

func TestLoad_InvalidBlackoutDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
blackouts:
  - name: Broken
    start: 15/11/2025
    end: "2025-12-31"
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 70000},
		Database: DatabaseConfig{Path: "x.db"},
	}
	assert.Error(t, cfg.Validate())
}
