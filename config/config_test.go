package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "sqlite://eco_cycle.db", cfg.DatabaseURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.CatalogRefreshInterval)
	assert.Equal(t, "catalog.json", cfg.Catalog.ObjectKey)
	assert.False(t, cfg.Catalog.Enabled())
	assert.Equal(t, ":8001", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000,https://game.example")
	t.Setenv("GAME_SERVICE_TOKEN", "s3cret")
	t.Setenv("CATALOG_REFRESH_INTERVAL", "30s")

	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "memory://", cfg.DatabaseURL)
	assert.Equal(t, []string{"http://localhost:3000", "https://game.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.ServiceToken)
	assert.Equal(t, 30*time.Second, cfg.CatalogRefreshInterval)
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric port", "PORT", "abc"},
		{"port out of range", "PORT", "70000"},
		{"bad interval", "CATALOG_REFRESH_INTERVAL", "soon"},
		{"bucket without account", "CATALOG_BUCKET", "catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, _, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
