// Package config defines evalsync configuration structures and loading hooks.
//
// Conventions:
//   - Keys are flat snake_case names shared by YAML files and EVALSYNC_* env vars.
//   - New returns a Config populated with defaults; Load layers file and env on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
)

// Conversion modes for a sync run.
const (
	// ModeLeaderboard re-merges every document under each changed leaderboard.
	ModeLeaderboard = "leaderboard"
	// ModePaths merges only the document paths reported as changed.
	ModePaths = "paths"
)

// Remote backends.
const (
	BackendNone = "none"
	BackendFS   = "fs"
	BackendGCS  = "gcs"
	BackendS3   = "s3"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// RepoDir is the root of the git working tree holding the documents.
	RepoDir string `koanf:"repo_dir"`
	// DataDir is the document tree root, relative to RepoDir unless absolute.
	DataDir string `koanf:"data_dir"`
	// OutputDir receives batch files and the run manifest.
	OutputDir string `koanf:"output_dir"`
	// ManifestName is the manifest file name inside OutputDir.
	ManifestName string `koanf:"manifest_name"`

	// DiffFrom and DiffTo bound the history range used for change detection.
	DiffFrom string `koanf:"diff_from"`
	DiffTo   string `koanf:"diff_to"`

	// Mode is ModeLeaderboard or ModePaths.
	Mode string `koanf:"mode"`

	// Remote batch store settings.
	RemoteBackend    string `koanf:"remote_backend"`
	RemotePrefix     string `koanf:"remote_prefix"`
	RemoteDir        string `koanf:"remote_dir"`
	RemoteBucket     string `koanf:"remote_bucket"`
	RemoteEndpoint   string `koanf:"remote_endpoint"`
	RemoteRegion     string `koanf:"remote_region"`
	RemoteUseSSL     bool   `koanf:"remote_use_ssl"`
	RemoteMaxRetries int    `koanf:"remote_max_retries"`

	// MetricsTextfile, when set, receives Prometheus metrics after each command.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		RepoDir:          ".",
		DataDir:          "data",
		OutputDir:        "parquet_output",
		ManifestName:     "changed_leaderboards.json",
		DiffFrom:         "HEAD~1",
		DiffTo:           "HEAD",
		Mode:             ModeLeaderboard,
		RemoteBackend:    BackendNone,
		RemoteUseSSL:     true,
		RemoteMaxRetries: 3,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate(_ context.Context) error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}
	if c.ManifestName == "" {
		return fmt.Errorf("%w: manifest_name must not be empty", ErrInvalidConfig)
	}
	switch c.Mode {
	case ModeLeaderboard, ModePaths:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	switch c.RemoteBackend {
	case BackendNone:
	case BackendFS:
		if c.RemoteDir == "" {
			return fmt.Errorf("%w: remote_dir is required for the fs backend", ErrInvalidConfig)
		}
	case BackendGCS, BackendS3:
		if c.RemoteBucket == "" {
			return fmt.Errorf("%w: remote_bucket is required for the %s backend", ErrInvalidConfig, c.RemoteBackend)
		}
	default:
		return fmt.Errorf("%w: unknown remote_backend %q", ErrInvalidConfig, c.RemoteBackend)
	}
	if c.RemoteMaxRetries < 0 {
		return fmt.Errorf("%w: remote_max_retries must not be negative", ErrInvalidConfig)
	}
	return nil
}
