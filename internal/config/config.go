// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the HTTP server, dataset loading, R2 snapshots, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string // "*" allows any origin
	WebDir          string   // Static front end directory (empty = not served)

	// Data Configuration
	DataDir             string        // Directory holding processed course datasets
	DataPattern         string        // File name prefix, e.g. all_courses_*
	DataRefreshInterval time.Duration // 0 disables periodic reload
	MaxQueryLimit       int           // Upper bound for the limit query parameter

	// R2 Snapshot Configuration
	R2 R2Config

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64

	// Better Stack Configuration
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)
}

// R2Config holds Cloudflare R2 snapshot settings.
type R2Config struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	SnapshotKey     string        // Object key, e.g. snapshots/all_courses.csv.zst
	PollInterval    time.Duration // How often to check the object ETag
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "8000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		CORSOrigins:     getListEnv(EnvCORSOrigins, []string{"*"}),
		WebDir:          getEnv(EnvWebDir, ""),

		// Data Configuration
		DataDir:             getEnv(EnvDataDir, "./data/processed"),
		DataPattern:         getEnv(EnvDataPattern, "all_courses_*"),
		DataRefreshInterval: getDurationEnv(EnvDataRefreshInterval, 0),
		MaxQueryLimit:       getIntEnv(EnvMaxQueryLimit, DefaultMaxQueryLimit),

		// R2 Snapshot Configuration
		R2: R2Config{
			Enabled:         getBoolEnv(EnvR2Enabled, false),
			AccountID:       getEnv(EnvR2AccountID, ""),
			AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
			SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
			BucketName:      getEnv(EnvR2BucketName, ""),
			SnapshotKey:     getEnv(EnvR2SnapshotKey, "snapshots/all_courses.csv.zst"),
			PollInterval:    getDurationEnv(EnvR2PollInterval, R2SnapshotPollInterval),
		},

		// Sentry Configuration
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:     getEnv(EnvSentryRelease, ""),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		// Better Stack Configuration
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	} else if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("%s must be a valid port, got %q", EnvPort, c.Port))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.DataPattern == "" {
		errs = append(errs, errors.New(EnvDataPattern+" is required"))
	}
	if c.DataRefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvDataRefreshInterval, c.DataRefreshInterval))
	}
	if c.MaxQueryLimit <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMaxQueryLimit, c.MaxQueryLimit))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}
	if err := c.R2.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("r2 config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks R2 settings. Credentials are required only when enabled.
func (r R2Config) Validate() error {
	if !r.Enabled {
		return nil
	}

	var errs []error
	required := []struct {
		key, value string
	}{
		{EnvR2AccountID, r.AccountID},
		{EnvR2AccessKeyID, r.AccessKeyID},
		{EnvR2SecretAccessKey, r.SecretAccessKey},
		{EnvR2BucketName, r.BucketName},
		{EnvR2SnapshotKey, r.SnapshotKey},
	}
	for _, f := range required {
		if f.value == "" {
			errs = append(errs, errors.New(f.key+" is required when R2 is enabled"))
		}
	}
	if r.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvR2PollInterval, r.PollInterval))
	}
	return errors.Join(errs...)
}

// SentryEnabled reports whether error tracking is configured.
func (c *Config) SentryEnabled() bool {
	return c.SentryDSN != ""
}

// BetterStackEnabled reports whether log shipping is configured.
func (c *Config) BetterStackEnabled() bool {
	return c.BetterStackToken != ""
}

// AllowAllOrigins reports whether CORS accepts any origin.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated list with fallback to default value
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
