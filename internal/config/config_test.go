package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "/bin/bash", cfg.Shell)
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(`
conda:
  frontend: conda
  prefix: /scratch/envs
engine_version: "7.32.4"
workers: 4
shell: /bin/zsh
lock:
  redis_url: redis://localhost:6379/0
  ttl: 30m
`), 0o644))

	t.Run("File Only", func(t *testing.T) {
		cfg, err := Load(root, env(nil))
		require.NoError(t, err)
		assert.Equal(t, "conda", cfg.Conda.Frontend)
		assert.Equal(t, "/scratch/envs", cfg.Conda.Prefix)
		assert.Equal(t, "7.32.4", cfg.EngineVersion)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, "/bin/zsh", cfg.Shell)
		assert.Equal(t, 30*time.Minute, cfg.Lock.TTL)
	})

	t.Run("Env Wins", func(t *testing.T) {
		cfg, err := Load(root, env(map[string]string{
			"SHELL":              "/usr/bin/fish",
			"SNK_CONDA_FRONTEND": "mamba",
			"SNK_WORKERS":        "8",
			"SNK_DEBUG":          "true",
		}))
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/fish", cfg.Shell)
		assert.Equal(t, "mamba", cfg.Conda.Frontend)
		assert.Equal(t, 8, cfg.Workers)
		assert.True(t, cfg.Debug)
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Bad YAML", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("workers: [1"), 0o644))
		_, err := Load(root, env(nil))
		assert.Error(t, err)
	})

	t.Run("Bad Workers Env", func(t *testing.T) {
		_, err := Load(t.TempDir(), env(map[string]string{"SNK_WORKERS": "many"}))
		assert.Error(t, err)
	})

	t.Run("Zero Workers", func(t *testing.T) {
		_, err := Load(t.TempDir(), env(map[string]string{"SNK_WORKERS": "0"}))
		assert.ErrorContains(t, err, "workers")
	})
}
