package r2client

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// CompressFile writes a zstd-compressed copy of srcPath to dstPath.
// dstPath is replaced atomically; a failure leaves no partial file.
func CompressFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("compress: open source: %w", err)
	}
	defer src.Close()

	return writeAtomic(dstPath, func(w io.Writer) error {
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("compress: create encoder: %w", err)
		}
		if _, err := io.Copy(encoder, src); err != nil {
			_ = encoder.Close()
			return fmt.Errorf("compress: copy: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("compress: close encoder: %w", err)
		}
		return nil
	})
}

// DecompressStream decodes a zstd stream into dstPath and returns the
// number of bytes written. dstPath only appears once the whole stream
// decoded.
func DecompressStream(r io.Reader, dstPath string) (int64, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("decompress: create decoder: %w", err)
	}
	defer decoder.Close()

	var n int64
	err = writeAtomic(dstPath, func(w io.Writer) error {
		var copyErr error
		n, copyErr = io.Copy(w, decoder)
		if copyErr != nil {
			return fmt.Errorf("decompress: copy: %w", copyErr)
		}
		return nil
	})
	return n, err
}

// writeAtomic fills a temp file next to dst and renames it into place.
func writeAtomic(dst string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", dst, err)
	}
	tmpName := tmp.Name()

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", dst, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", dst, err)
	}
	return nil
}
