package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
	"github.com/garyellow/ntpu-course-master/internal/logger"
	"github.com/garyellow/ntpu-course-master/internal/metrics"
	"github.com/garyellow/ntpu-course-master/internal/r2client"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

// ObjectStore is the subset of r2client.Client used to fetch snapshots.
type ObjectStore interface {
	Stat(ctx context.Context, key string) (r2client.ObjectInfo, error)
	Download(ctx context.Context, key string) (io.ReadCloser, r2client.ObjectInfo, error)
}

// RemoteSource publishes the dataset stored under one object key,
// downloading it again only when the object's ETag changes.
type RemoteSource struct {
	store   ObjectStore
	key     string
	destDir string
	cache   *snapshot.Cache
	metrics *metrics.Metrics
	log     *logger.Logger

	mu       sync.Mutex
	etag     string
	lastPath string
}

// NewRemoteSource creates a source for key. Downloads are written to destDir.
func NewRemoteSource(store ObjectStore, key, destDir string, cache *snapshot.Cache, m *metrics.Metrics, log *logger.Logger) *RemoteSource {
	if destDir == "" {
		destDir = os.TempDir()
	}
	return &RemoteSource{
		store:   store,
		key:     key,
		destDir: destDir,
		cache:   cache,
		metrics: m,
		log:     log,
	}
}

// Name implements Source.
func (r *RemoteSource) Name() string { return "r2" }

// ETag returns the ETag of the last published object.
func (r *RemoteSource) ETag() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.etag
}

// Refresh downloads and publishes the object when its ETag changed.
func (r *RemoteSource) Refresh(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remote, err := r.store.Stat(ctx, r.key)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			return false, fmt.Errorf("ingest: object %q: %w", r.key, apperrors.ErrNoDataset)
		}
		return false, fmt.Errorf("ingest: head %q: %w", r.key, err)
	}
	if remote.ETag != "" && remote.ETag == r.etag {
		return false, nil
	}

	start := time.Now()
	localPath, info, err := r.download(ctx)
	if err != nil {
		r.metrics.RecordSnapshotLoad(r.Name(), "error", time.Since(start).Seconds())
		return false, err
	}

	snap, err := LoadFile(ctx, localPath)
	if err != nil {
		_ = os.Remove(localPath)
		r.metrics.RecordSnapshotLoad(r.Name(), "error", time.Since(start).Seconds())
		return false, err
	}
	r.metrics.RecordSnapshotLoad(r.Name(), "success", time.Since(start).Seconds())
	r.cache.Publish(snap)

	if r.lastPath != "" && r.lastPath != localPath {
		_ = os.Remove(r.lastPath)
	}
	r.lastPath = localPath
	oldETag := r.etag
	r.etag = info.ETag
	if r.log != nil {
		r.log.WithModule("ingest").
			WithField("key", r.key).
			WithField("old_etag", oldETag).
			WithField("new_etag", info.ETag).
			WithField("size_bytes", info.Size).
			WithField("last_modified", info.LastModified).
			WithField("records", snap.Len()).
			Info("Remote dataset loaded")
	}
	return true, nil
}

// download writes the object to a unique file in destDir and returns its
// path. Objects ending in .zst other than .csv.zst are decompressed.
func (r *RemoteSource) download(ctx context.Context) (string, r2client.ObjectInfo, error) {
	body, info, err := r.store.Download(ctx, r.key)
	if err != nil {
		return "", info, fmt.Errorf("ingest: download %q: %w", r.key, err)
	}
	defer body.Close()

	if err := os.MkdirAll(r.destDir, 0o755); err != nil {
		return "", info, fmt.Errorf("ingest: create %s: %w", r.destDir, err)
	}

	name := path.Base(r.key)
	decompress := strings.HasSuffix(name, ".zst") && !strings.HasSuffix(name, ExtCSVZst)
	if decompress {
		name = strings.TrimSuffix(name, ".zst")
	}
	ext := filepath.Ext(name)
	if strings.HasSuffix(name, ExtCSVZst) {
		ext = ExtCSVZst
	}
	stem := strings.TrimSuffix(name, ext)
	dst := filepath.Join(r.destDir, stem+"_"+strconv.FormatInt(time.Now().UnixNano(), 10)+ext)

	if decompress {
		n, err := r2client.DecompressStream(body, dst)
		if err != nil {
			return "", info, fmt.Errorf("ingest: %w", err)
		}
		info.Size = n
		return dst, info, nil
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", info, fmt.Errorf("ingest: create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", info, fmt.Errorf("ingest: write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", info, fmt.Errorf("ingest: close %s: %w", dst, err)
	}
	return dst, info, nil
}
