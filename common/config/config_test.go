package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://customers.securitasdirect.es/owa-api/graphql", cfg.API.URL)
	assert.Equal(t, 360*time.Second, cfg.Session.TTL)
	assert.Equal(t, 540*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30, cfg.Poll.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 10, cfg.Poll.StatusMaxAttempts)
	assert.Equal(t, 4*time.Second, cfg.Camera.Interval)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("VIGILO_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 360*time.Second, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIGILO_CONFIG_DIR", dir)

	content := []byte("session:\n  ttl: 120s\ncache:\n  backend: redis\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.Session.TTL)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, cfg.Poll.MaxAttempts)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VIGILO_CONFIG_DIR", t.TempDir())
	t.Setenv("VIGILO_POLL_MAX_ATTEMPTS", "7")
	t.Setenv("VIGILO_LOGGING_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Poll.MaxAttempts)
	assert.Equal(t, "json", cfg.Logging.Format)
}
