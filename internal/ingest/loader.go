package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/logger"
	"github.com/garyellow/ntpu-course-master/internal/metrics"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

// Source produces snapshots for a cache.
type Source interface {
	// Name labels the source in logs and metrics.
	Name() string
	// Refresh publishes a new snapshot when the underlying data changed.
	// It reports whether a snapshot was published.
	Refresh(ctx context.Context) (bool, error)
}

// fileStamp identifies one version of a dataset file.
type fileStamp struct {
	path    string
	size    int64
	modTime time.Time
}

// Loader publishes the latest dataset found in a local directory.
type Loader struct {
	dir     string
	pattern string
	cache   *snapshot.Cache
	metrics *metrics.Metrics
	log     *logger.Logger

	mu   sync.Mutex
	last fileStamp
}

// NewLoader creates a loader for files in dir matching pattern.
func NewLoader(dir, pattern string, cache *snapshot.Cache, m *metrics.Metrics, log *logger.Logger) *Loader {
	return &Loader{
		dir:     dir,
		pattern: pattern,
		cache:   cache,
		metrics: m,
		log:     log,
	}
}

// Name implements Source.
func (l *Loader) Name() string { return "local" }

// Refresh loads the latest dataset if its name, size or modification
// time differs from the one last published.
func (l *Loader) Refresh(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, err := Discover(l.dir, l.pattern)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	stamp := fileStamp{path: path, size: info.Size(), modTime: info.ModTime()}
	if stamp == l.last {
		return false, nil
	}

	start := time.Now()
	snap, err := LoadFile(ctx, path)
	if err != nil {
		l.metrics.RecordSnapshotLoad(l.Name(), "error", time.Since(start).Seconds())
		return false, err
	}
	l.metrics.RecordSnapshotLoad(l.Name(), "success", time.Since(start).Seconds())

	l.cache.Publish(snap)
	l.last = stamp
	if l.log != nil {
		l.log.WithModule("ingest").
			WithField("file", filepath.Base(path)).
			WithField("records", snap.Len()).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("Dataset loaded")
	}
	return true, nil
}

// Run calls src.Refresh every interval until ctx is canceled.
// Failures are logged and retried on the next tick.
func Run(ctx context.Context, src Source, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if log != nil {
				log.WithField("source", src.Name()).Info("Dataset refresh stopped")
			}
			return
		case <-ticker.C:
			if _, err := src.Refresh(ctx); err != nil && ctx.Err() == nil && log != nil {
				log.WithField("source", src.Name()).WithError(err).Warn("Dataset refresh failed")
			}
		}
	}
}
