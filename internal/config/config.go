// Package config provides configuration loading from environment variables.
// Configuration is read exactly once at startup; no other component reads
// ambient process state.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrProjectIDRequired is returned when PROJECT_ID is not set.
	ErrProjectIDRequired = errors.New("config: PROJECT_ID is required")
	// ErrAccessTokenRequired is returned when ACCESS_TOKEN is not set.
	ErrAccessTokenRequired = errors.New("config: ACCESS_TOKEN is required")
)

// Config holds all configuration for the application.
type Config struct {
	// Generation service settings
	ProjectID   string `env:"PROJECT_ID, required" json:"project_id"`
	Location    string `env:"LOCATION, default=us-central1" json:"location"`
	ModelID     string `env:"MODEL_ID, default=veo-3.0-generate-preview" json:"model_id"`
	AccessToken string `env:"ACCESS_TOKEN, required" json:"-"` // Masked in JSON

	// Polling settings
	PollInterval time.Duration `env:"POLL_INTERVAL, default=15s" json:"poll_interval"`
	MaxWait      time.Duration `env:"MAX_WAIT, default=30m" json:"max_wait"`
	PollBackoff  bool          `env:"POLL_BACKOFF, default=false" json:"poll_backoff"`

	// Output settings
	OutputDir string `env:"OUTPUT_DIR, default=." json:"output_dir"`

	// Optional object store settings. When a bucket is configured, the
	// service is asked to place results under it and completed jobs are
	// fetched back from there.
	OutputBucket       string `env:"OUTPUT_BUCKET" json:"output_bucket,omitempty"`
	OutputRegion       string `env:"OUTPUT_REGION" json:"output_region,omitempty"`
	StorageEndpoint    string `env:"STORAGE_ENDPOINT" json:"storage_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// BucketEnabled returns true if an output object store is configured.
func (c *Config) BucketEnabled() bool {
	return c.OutputBucket != "" && c.OutputRegion != ""
}

// OutputStorageURI returns the output-location hint passed on submission, or
// empty when no bucket is configured and the service should return inline
// results.
func (c *Config) OutputStorageURI() string {
	if c.OutputBucket == "" {
		return ""
	}
	return fmt.Sprintf("s3://%s/videos/", c.OutputBucket)
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "PROJECT_ID") {
			return nil, ErrProjectIDRequired
		}
		if strings.Contains(err.Error(), "ACCESS_TOKEN") {
			return nil, ErrAccessTokenRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return ErrProjectIDRequired
	}
	if c.AccessToken == "" {
		return ErrAccessTokenRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{ProjectID: %s, Location: %s, ModelID: %s, PollInterval: %s, MaxWait: %s, OutputDir: %s, OutputBucket: %s, OutputRegion: %s, LogFormat: %s, LogLevel: %s}",
		c.ProjectID,
		c.Location,
		c.ModelID,
		c.PollInterval,
		c.MaxWait,
		c.OutputDir,
		c.OutputBucket,
		c.OutputRegion,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
