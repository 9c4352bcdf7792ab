// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "NTPU_PORT"
	EnvLogLevel        = "NTPU_LOG_LEVEL"
	EnvShutdownTimeout = "NTPU_SHUTDOWN_TIMEOUT"
	EnvCORSOrigins     = "NTPU_CORS_ORIGINS"
	EnvWebDir          = "NTPU_WEB_DIR"

	// Data
	EnvDataDir             = "NTPU_DATA_DIR"
	EnvDataPattern         = "NTPU_DATA_PATTERN"
	EnvDataRefreshInterval = "NTPU_DATA_REFRESH_INTERVAL"
	EnvMaxQueryLimit       = "NTPU_MAX_QUERY_LIMIT"

	// R2 Snapshot Feature
	EnvR2Enabled         = "NTPU_R2_ENABLED"
	EnvR2AccountID       = "NTPU_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "NTPU_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "NTPU_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "NTPU_R2_BUCKET_NAME"
	EnvR2SnapshotKey     = "NTPU_R2_SNAPSHOT_KEY"
	EnvR2PollInterval    = "NTPU_R2_POLL_INTERVAL"

	// Sentry Feature
	EnvSentryDSN         = "NTPU_SENTRY_DSN"
	EnvSentryEnvironment = "NTPU_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "NTPU_SENTRY_RELEASE"
	EnvSentrySampleRate  = "NTPU_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "NTPU_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "NTPU_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "NTPU_METRICS_USERNAME"
	EnvMetricsPassword = "NTPU_METRICS_PASSWORD"
)
