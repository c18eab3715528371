// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Layer overrides in Load: YAML file, dotenv file, then environment.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// ReservedPaths are served next to the prediction endpoint and cannot be
// used as its mount path.
var ReservedPaths = []string{"/healthz", "/metrics", "/stats", "/model", "/openapi.yaml", "/api-docs"}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the log encoding from text to JSON.
	LogJSON bool `koanf:"log_json"`

	// LogFile additionally writes logs to a size-rotated file when set.
	LogFile string `koanf:"log_file"`

	// LogMaxSizeMB and LogMaxBackups control log file rotation.
	LogMaxSizeMB  int `koanf:"log_max_size_mb"`
	LogMaxBackups int `koanf:"log_max_backups"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// MountPath is where the prediction endpoint is served.
	MountPath string `koanf:"mount_path"`

	// ModelPath locates the artifact: a file path, file:// or s3:// URI.
	ModelPath string `koanf:"model_path"`

	// ModelChecksum is the expected hex blake3-256 digest of the artifact.
	ModelChecksum string `koanf:"model_checksum"`

	// CacheSize bounds the prediction cache. Zero disables it.
	CacheSize int `koanf:"cache_size"`

	// S3 configures access to s3:// model paths.
	S3 S3 `koanf:"s3"`

	// Metrics shapes the Prometheus series names and labels.
	Metrics Metrics `koanf:"metrics"`
}

// Metrics holds Prometheus naming settings. Empty values keep the defaults.
type Metrics struct {
	Namespace      string            `koanf:"namespace"`
	Subsystem      string            `koanf:"subsystem"`
	LatencyBuckets []float64         `koanf:"latency_buckets"`
	ConstLabels    map[string]string `koanf:"const_labels"`
}

// S3 holds object store settings.
type S3 struct {
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		LogMaxSizeMB:  100,
		LogMaxBackups: 3,
		Addr:          ":8000",
		MountPath:     "/predict",
		ModelPath:     "models/diabetes_model.json",
		CacheSize:     1024,
		Metrics: Metrics{
			Namespace: "sugarsignal",
			Subsystem: "inference",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelPath) == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.MountPath, "/"):
		return fmt.Errorf("%w: mount_path must start with /", ErrInvalidConfig)
	case c.MountPath == "/":
		return fmt.Errorf("%w: mount_path must not be the site root", ErrInvalidConfig)
	case strings.HasSuffix(c.MountPath, "/"):
		return fmt.Errorf("%w: mount_path must not end with /", ErrInvalidConfig)
	case strings.ContainsAny(c.MountPath, " \t{}"):
		return fmt.Errorf("%w: mount_path must be a literal path", ErrInvalidConfig)
	case slices.Contains(ReservedPaths, c.MountPath):
		return fmt.Errorf("%w: mount_path %q is already served", ErrInvalidConfig, c.MountPath)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache_size must not be negative", ErrInvalidConfig)
	case c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0:
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
