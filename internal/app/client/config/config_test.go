package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, 5*time.Second, cfg.SyncInterval)
	assert.Equal(t, 3*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CachePath)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.TokenPath)
	assert.True(t, cfg.IsLocal())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("SERVER_ADDRESS", "events.example.com")
	t.Setenv("ENABLE_TLS", "true")
	t.Setenv("SYNC_INTERVAL_SECONDS", "30")
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "events.example.com", cfg.ServerAddress)
	assert.True(t, cfg.EnableTLS)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.True(t, cfg.IsProd())
}

func TestLoad_RejectsBadInterval(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("SYNC_INTERVAL_SECONDS", "0")

	_, err := Load(viper.New())
	assert.Error(t, err)
}
