package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
	"github.com/garyellow/ntpu-course-master/internal/stringutil"
)

// rowsPerChunk bounds the rows converted by one decode goroutine.
const rowsPerChunk = 2048

// LoadFile reads the dataset at path into a new snapshot named after the file.
func LoadFile(ctx context.Context, path string) (*snapshot.Snapshot, error) {
	kind, ok := kindOf(path)
	if !ok {
		return nil, apperrors.NewSourceError(path, fmt.Errorf("unsupported dataset extension"))
	}

	var (
		columns []string
		courses []catalog.Course
		err     error
	)
	switch kind {
	case ExtDB:
		columns, courses, err = loadSQLite(ctx, path)
	default:
		columns, courses, err = loadCSVFile(ctx, path, kind == ExtCSVZst)
	}
	if err != nil {
		return nil, apperrors.NewSourceError(path, err)
	}
	return snapshot.New(filepath.Base(path), columns, courses, time.Now()), nil
}

func loadCSVFile(ctx context.Context, path string, compressed bool) ([]string, []catalog.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read: %w", err)
	}
	return DecodeCSV(ctx, raw)
}

// DecodeCSV parses a CSV dataset. The first row is the header. A UTF-8
// byte order mark is dropped; input that is not valid UTF-8 is decoded
// as Big5.
func DecodeCSV(ctx context.Context, raw []byte) ([]string, []catalog.Course, error) {
	raw = stringutil.TrimBOM(raw)
	if !stringutil.IsUTF8(raw) {
		decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decode big5: %w", err)
		}
		raw = decoded
	}

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("parse csv: missing header")
	}

	header := rows[0]
	body := rows[1:]
	courses := make([]catalog.Course, len(body))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for lo := 0; lo < len(body); lo += rowsPerChunk {
		hi := min(lo+rowsPerChunk, len(body))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				courses[i] = rowToCourse(header, body[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return header, courses, nil
}

func rowToCourse(header, row []string) catalog.Course {
	var c catalog.Course
	for j, name := range header {
		c.Set(name, catalog.ParseField(row[j]))
	}
	return c
}
