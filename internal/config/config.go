package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the optional per-workflow configuration file.
const FileName = "snk.yaml"

// DefaultShell is used when neither SHELL nor the config file names one.
const DefaultShell = "/bin/bash"

// Config holds tool settings. Precedence: defaults < snk.yaml < environment < flags.
type Config struct {
	Conda         CondaConfig `yaml:"conda"`
	EngineVersion string      `yaml:"engine_version"`
	Workers       int         `yaml:"workers"`
	Shell         string      `yaml:"shell"`
	Lock          LockConfig  `yaml:"lock"`
	Debug         bool        `yaml:"debug"`
}

// CondaConfig overrides conda related behaviour.
type CondaConfig struct {
	// Frontend forces the frontend ("mamba", "conda", "micromamba").
	Frontend string `yaml:"frontend"`
	// Prefix replaces the derived environment prefix directory.
	Prefix string `yaml:"prefix"`
}

// LockConfig enables cross-invocation creation locks.
type LockConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers: 1,
		Shell:   DefaultShell,
		Lock:    LockConfig{TTL: time.Hour},
	}
}

// Load reads <root>/snk.yaml (when present) and applies environment overrides
// looked up through getenv (os.Getenv when nil).
func Load(root string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read %s: %w", FileName, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("SHELL"); v != "" {
		cfg.Shell = v
	}
	if v := getenv("SNK_CONDA_FRONTEND"); v != "" {
		cfg.Conda.Frontend = v
	}
	if v := getenv("SNK_CONDA_PREFIX"); v != "" {
		cfg.Conda.Prefix = v
	}
	if v := getenv("SNK_ENGINE_VERSION"); v != "" {
		cfg.EngineVersion = v
	}
	if v := getenv("SNK_REDIS_URL"); v != "" {
		cfg.Lock.RedisURL = v
	}
	if v := getenv("SNK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SNK_WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v := getenv("SNK_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SNK_DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Lock.RedisURL != "" && c.Lock.TTL <= 0 {
		return fmt.Errorf("lock.ttl must be positive when lock.redis_url is set")
	}
	if c.Shell == "" {
		return fmt.Errorf("shell must not be empty")
	}
	return nil
}
