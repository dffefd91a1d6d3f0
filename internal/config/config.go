// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layered loading lives in Load: defaults, optional YAML file, env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the Prometheus listen address, e.g. ":9090".
	// Empty disables the metrics endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// Threshold is the minimum accepted similarity score (0-100).
	Threshold int `koanf:"threshold"`

	// TokenOverlapMin is the shared-token requirement for fixture matching.
	TokenOverlapMin int `koanf:"token_overlap_min"`

	// TokenMinLength is the minimum token length counted toward overlap.
	TokenMinLength int `koanf:"token_min_length"`

	// TimeWindowMinutes bounds start-time distance for fixture matching.
	TimeWindowMinutes int `koanf:"time_window_minutes"`

	// Delimiters are the characters composite participant fields split on.
	Delimiters string `koanf:"delimiters"`

	// WorkerCount sets the number of enrichment workers.
	WorkerCount int `koanf:"worker_count"`

	// BackupRetention sets how many store backups are kept.
	BackupRetention int `koanf:"backup_retention"`

	// CacheSize bounds the resolution cache. Zero disables the bound.
	CacheSize int `koanf:"cache_size"`

	// EnrichStatus is the record status eligible for enrichment passes.
	EnrichStatus string `koanf:"enrich_status"`

	// StorePath is where the keyed record store is persisted.
	StorePath string `koanf:"store_path"`

	// SnapshotPath points at the observed snapshot to reconcile.
	SnapshotPath string `koanf:"snapshot_path"`

	// PoolsPath points at the reference pools file.
	PoolsPath string `koanf:"pools_path"`

	// FixturesPath points at the odds fixtures file. Empty skips the pass.
	FixturesPath string `koanf:"fixtures_path"`

	// ResultsPath points at the results feed file. Empty skips the pass.
	ResultsPath string `koanf:"results_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Threshold:         85,
		TokenOverlapMin:   2,
		TokenMinLength:    3,
		TimeWindowMinutes: 75,
		Delimiters:        "/,&",
		WorkerCount:       runtime.NumCPU(),
		BackupRetention:   3,
		CacheSize:         50_000,
		EnrichStatus:      "upcoming",
		StorePath:         "tracker.json",
		SnapshotPath:      "snapshot.json",
		PoolsPath:         "pools.json",
	}
}
