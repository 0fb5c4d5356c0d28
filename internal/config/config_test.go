package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://jobs.example.com
realtime:
  max_backoff: 10s
storage:
  driver: sqlite3
  dsn: ":memory:"
`), 0o644))

	t.Setenv("HUNTX_BRIDGE_ADDR", "127.0.0.1:9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Realtime.MaxBackoff)
	assert.Equal(t, 500*time.Millisecond, cfg.Realtime.InitialBackoff)
	assert.Equal(t, "127.0.0.1:9999", cfg.Bridge.Addr)
	assert.Equal(t, "wss://jobs.example.com/ws", cfg.RealtimeURL())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: mongo\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestRealtimeURLExplicit(t *testing.T) {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:5000"
	assert.Equal(t, "ws://localhost:5000/ws", cfg.RealtimeURL())

	cfg.Realtime.URL = "ws://broker:7000/socket"
	assert.Equal(t, "ws://broker:7000/socket", cfg.RealtimeURL())
}
