// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/garyellow/ntpu-course-master/internal/buildinfo"
	"github.com/garyellow/ntpu-course-master/internal/config"
	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
	"github.com/garyellow/ntpu-course-master/internal/ingest"
	"github.com/garyellow/ntpu-course-master/internal/logger"
	"github.com/garyellow/ntpu-course-master/internal/metrics"
	"github.com/garyellow/ntpu-course-master/internal/modules/course"
	"github.com/garyellow/ntpu-course-master/internal/r2client"
	"github.com/garyellow/ntpu-course-master/internal/sentry"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg             *config.Config
	logger          *logger.Logger
	metrics         *metrics.Metrics
	registry        *prometheus.Registry
	cache           *snapshot.Cache
	courses         *course.Service
	source          ingest.Source
	refreshInterval time.Duration
	router          *gin.Engine
	server          *http.Server
	wg              sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
// A missing dataset is not fatal: the API answers "no dataset" until a
// refresh publishes one.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "ntpu-course-master")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger so package-level slog.*Context() calls carry the request ID.
	slog.SetDefault(log.Logger)

	log.WithField("log_level", log.GetLevel().String()).Info("Initializing application...")
	if cfg.BetterStackEnabled() {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	release := cfg.SentryRelease
	if release == "" {
		release = buildinfo.Version
	}
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     release,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	} else if cfg.SentryEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	cache := snapshot.NewCache(m, log)

	app := &Application{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		registry: registry,
		cache:    cache,
		courses:  course.NewService(cache, m, log),
	}

	if err := app.setupSource(ctx); err != nil {
		return nil, err
	}
	app.initialLoad(ctx)

	gin.SetMode(gin.ReleaseMode)
	app.router = app.newRouter()
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler(),
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// setupSource picks the dataset source: the R2 snapshot object when R2 is
// enabled, otherwise the newest matching file in the data directory.
func (a *Application) setupSource(ctx context.Context) error {
	if !a.cfg.R2.Enabled {
		a.source = ingest.NewLoader(a.cfg.DataDir, a.cfg.DataPattern, a.cache, a.metrics, a.logger)
		a.refreshInterval = a.cfg.DataRefreshInterval
		a.logger.WithField("dir", a.cfg.DataDir).
			WithField("pattern", a.cfg.DataPattern).
			Info("Using local dataset source")
		return nil
	}

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    r2client.Endpoint(a.cfg.R2.AccountID),
		AccessKeyID: a.cfg.R2.AccessKeyID,
		SecretKey:   a.cfg.R2.SecretAccessKey,
		BucketName:  a.cfg.R2.BucketName,
	})
	if err != nil {
		return fmt.Errorf("r2 client: %w", err)
	}
	a.source = ingest.NewRemoteSource(client, a.cfg.R2.SnapshotKey, a.cfg.DataDir, a.cache, a.metrics, a.logger)
	a.refreshInterval = a.cfg.R2.PollInterval
	a.logger.WithField("bucket", a.cfg.R2.BucketName).
		WithField("key", a.cfg.R2.SnapshotKey).
		Info("Using R2 snapshot source")
	return nil
}

// initialLoad performs the first refresh. Failures are logged and leave
// the cache empty.
func (a *Application) initialLoad(ctx context.Context) {
	timeout := config.DatasetLoad
	if a.cfg.R2.Enabled {
		timeout = config.R2Download
	}
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := a.source.Refresh(loadCtx)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNoDataset):
		a.logger.WithError(err).Warn("No course dataset available at startup")
	default:
		a.logger.WithError(err).WithField("source", a.source.Name()).Error("Initial dataset load failed")
		sentry.CaptureException(ctx, err)
	}
}

// handler returns the router wrapped with CORS.
func (a *Application) handler() http.Handler {
	return corsMiddleware(a.cfg)(a.router)
}

// Run starts the HTTP server and background jobs.
//
// Shutdown order:
//  1. Receive shutdown signal (SIGINT/SIGTERM)
//  2. Cancel context to stop the refresh loop
//  3. Wait for background jobs to complete
//  4. Stop the HTTP server, flush Sentry and the logger
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		ingest.Run(ctx, a.source, a.refreshInterval, a.logger)
	})
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops the HTTP server and flushes telemetry.
// Must run after background jobs have stopped.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	if sentry.IsEnabled() && !sentry.Flush(2*time.Second) {
		a.logger.Warn("Sentry flush timed out")
	}

	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
