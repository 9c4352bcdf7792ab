// Package config provides centralized timeout constants for the application.
//
// The engine answers from memory, so request handling is fast; the longer
// timeouts exist for dataset loading and remote snapshot transfers.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the HTTP server read timeout.
	// Request bodies are small JSON documents.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the HTTP server write timeout.
	// Full-catalog responses (/api/courses/all) can be several megabytes.
	HTTPWrite = 30 * time.Second

	// HTTPIdle is the HTTP server idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Dataset timeouts
const (
	// DatasetLoad is the timeout for discovering and decoding one dataset file.
	DatasetLoad = 2 * time.Minute

	// R2Download is the timeout for fetching a snapshot object from R2.
	R2Download = 5 * time.Minute

	// R2SnapshotPollInterval is the default ETag polling interval.
	R2SnapshotPollInterval = 15 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
