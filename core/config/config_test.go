package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, "plugins", cfg.Pipeline.PluginsDir)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.Equal(t, "local", cfg.Pipeline.Publisher)
	assert.True(t, cfg.Structures.Enabled)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PIPELINE_CONCURRENCY", "9")
	t.Setenv("CACHE_BACKEND", "database")
	t.Setenv("STRUCTURES_ENABLED", "false")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Pipeline.Concurrency)
	assert.Equal(t, "database", cfg.Cache.Backend)
	assert.False(t, cfg.Structures.Enabled)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=9191\nPIPELINE_OUTPUT_DIR=out\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("PIPELINE_OUTPUT_DIR")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "out", cfg.Pipeline.OutputDir)
}
