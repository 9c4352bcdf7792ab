// Package main provides the snapshot publisher: it validates a processed
// course dataset and uploads it to R2, where servers poll for it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/config"
	"github.com/garyellow/ntpu-course-master/internal/ingest"
	"github.com/garyellow/ntpu-course-master/internal/logger"
	"github.com/garyellow/ntpu-course-master/internal/r2client"
)

// CLI flags
var (
	fileFlag   = flag.String("file", "", "Dataset to publish (default: newest file in the data directory)")
	keyFlag    = flag.String("key", "", "Object key (default: "+config.EnvR2SnapshotKey+")")
	dryRunFlag = flag.Bool("dry-run", false, "Validate the dataset without uploading")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).WithModule("publish")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Publish failed")
		_ = log.Shutdown(context.Background())
		os.Exit(1)
	}
	_ = log.Shutdown(context.Background())
}

func run(cfg *config.Config, log *logger.Logger) error {
	path := *fileFlag
	if path == "" {
		latest, err := ingest.Discover(cfg.DataDir, cfg.DataPattern)
		if err != nil {
			return err
		}
		path = latest
	}

	key := *keyFlag
	if key == "" {
		key = cfg.R2.SnapshotKey
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), config.DatasetLoad)
	defer cancel()
	snap, err := ingest.LoadFile(loadCtx, path)
	if err != nil {
		return fmt.Errorf("validate dataset: %w", err)
	}
	log.WithFields(map[string]any{
		"file":    path,
		"records": snap.Len(),
		"periods": len(snap.Periods()),
	}).Info("Dataset validated")

	if *dryRunFlag {
		log.Info("Dry run, skipping upload")
		return nil
	}

	r2 := cfg.R2
	r2.Enabled = true
	if err := r2.Validate(); err != nil {
		return err
	}

	upload := path
	if needsCompression(path, key) {
		tmp, err := os.MkdirTemp("", "ntpu-publish-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)

		upload = filepath.Join(tmp, filepath.Base(path)+".zst")
		if err := r2client.CompressFile(path, upload); err != nil {
			return err
		}
	}

	ctx, cancelUpload := context.WithTimeout(context.Background(), config.R2Download)
	defer cancelUpload()

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    r2client.Endpoint(r2.AccountID),
		AccessKeyID: r2.AccessKeyID,
		SecretKey:   r2.SecretAccessKey,
		BucketName:  r2.BucketName,
	})
	if err != nil {
		return fmt.Errorf("r2 client: %w", err)
	}

	start := time.Now()
	info, err := client.UploadFile(ctx, key, upload, contentType(key))
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	log.WithField("key", key).
		WithField("etag", info.ETag).
		WithField("size_bytes", info.Size).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Snapshot published")
	return nil
}

// needsCompression reports whether the object key expects zstd but the
// local file is not compressed yet.
func needsCompression(path, key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ".zst") &&
		!strings.HasSuffix(strings.ToLower(path), ".zst")
}

func contentType(key string) string {
	k := strings.ToLower(key)
	switch {
	case strings.HasSuffix(k, ".zst"):
		return "application/zstd"
	case strings.HasSuffix(k, ingest.ExtDB):
		return "application/vnd.sqlite3"
	default:
		return "text/csv; charset=utf-8"
	}
}
