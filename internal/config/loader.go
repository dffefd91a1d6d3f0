package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SETPOINT_CONFIG is set
//  3. env (prefix SETPOINT_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SETPOINT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SETPOINT_THRESHOLD, SETPOINT_WORKER_COUNT, ...
	// Map env keys like SETPOINT_WORKER_COUNT -> worker_count (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SETPOINT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "setpoint_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the pipeline cannot run with.
func (c *Config) validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("%w: threshold must be within 0-100, got %d", ErrInvalidConfig, c.Threshold)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be at least 1, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.BackupRetention < 1 {
		return fmt.Errorf("%w: backup_retention must be at least 1, got %d", ErrInvalidConfig, c.BackupRetention)
	}
	if c.TimeWindowMinutes < 0 {
		return fmt.Errorf("%w: time_window_minutes must not be negative, got %d", ErrInvalidConfig, c.TimeWindowMinutes)
	}
	if c.StorePath == "" {
		return fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	}
	return nil
}
