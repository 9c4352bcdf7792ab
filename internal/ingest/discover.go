// Package ingest loads course datasets produced by the catalog pipeline
// and publishes them to the snapshot cache.
//
// Datasets are CSV files (UTF-8 or Big5, optionally zstd-compressed) or
// SQLite databases holding a courses table.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
)

// Supported dataset extensions.
const (
	ExtCSV    = ".csv"
	ExtCSVZst = ".csv.zst"
	ExtDB     = ".db"
)

var extensions = []string{ExtCSV, ExtCSVZst, ExtDB}

// Discover returns the latest dataset in dir whose name matches pattern
// followed by a supported extension. Latest means greatest by filename.
// It returns an error matching errors.ErrNoDataset when nothing matches.
func Discover(dir, pattern string) (string, error) {
	var names []string
	for _, ext := range extensions {
		matches, err := filepath.Glob(filepath.Join(dir, pattern+ext))
		if err != nil {
			return "", fmt.Errorf("ingest: bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			names = append(names, m)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("ingest: no dataset matching %q in %s: %w", pattern, dir, apperrors.ErrNoDataset)
	}
	return slices.MaxFunc(names, func(a, b string) int {
		return strings.Compare(filepath.Base(a), filepath.Base(b))
	}), nil
}

// kindOf classifies a dataset path by extension.
func kindOf(path string) (string, bool) {
	name := strings.ToLower(filepath.Base(path))
	// .csv.zst must be checked before .csv
	for _, ext := range []string{ExtCSVZst, ExtCSV, ExtDB} {
		if strings.HasSuffix(name, ext) {
			return ext, true
		}
	}
	return "", false
}
