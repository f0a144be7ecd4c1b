// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and REFXPP_* environment variables on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BeatmapDir is the only directory path based HTTP requests may read
	// from. Empty disables path requests over HTTP.
	BeatmapDir string `koanf:"beatmap_dir"`

	// UnrestrictedPaths lets path based HTTP requests read any file. It
	// cannot be combined with BeatmapDir.
	UnrestrictedPaths bool `koanf:"unrestricted_paths"`

	// MaxBeatmapBytes caps request bodies and uploaded beatmaps.
	MaxBeatmapBytes int64 `koanf:"max_beatmap_bytes"`

	// AccuracyScale is how accuracy is read: percent (0-100) or fraction (0-1).
	AccuracyScale string `koanf:"accuracy_scale"`

	// BatchConcurrency bounds concurrent calculations within one batch.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// MaxBatchSize caps the number of items in one batch request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MetricsNamespace prefixes every exported metric.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsSubsystem is the second part of every metric name.
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsEnabled turns recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRuntime also exports the Go runtime and process collectors.
	MetricsRuntime bool `koanf:"metrics_runtime"`

	// MetricsRefreshInterval is how often system gauges are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`

	// MetricsLatencyBuckets overrides the latency histogram buckets (seconds).
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		BeatmapDir:       "",
		MaxBeatmapBytes:  8 << 20,
		AccuracyScale:    "percent",
		BatchConcurrency: runtime.NumCPU(),
		MaxBatchSize:     100,
		MetricsNamespace: "refxpp",

		MetricsSubsystem:       "calculator",
		MetricsEnabled:         true,
		MetricsRefreshInterval: 10 * time.Second,
	}
}
