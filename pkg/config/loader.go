package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration file, expands environment variables, merges
// the result over the built-in defaults, and validates it. A missing file
// yields pure defaults (still validated, so a model must then come from
// environment expansion or fail loudly).
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("Configuration file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		var loaded Config
		if err := yaml.Unmarshal(ExpandEnv(data), &loaded); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		// User values win; defaults fill the gaps.
		if err := mergo.Merge(&loaded, cfg); err != nil {
			return nil, fmt.Errorf("merge config defaults: %w", err)
		}
		cfg = &loaded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"path", path,
		"model", cfg.Model.Model,
		"database", cfg.Database.Enabled,
		"docker", cfg.Docker.Enabled,
		"memory", cfg.Memory.Enabled,
		"workers", cfg.Queue.Workers)
	return cfg, nil
}
