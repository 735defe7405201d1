// Package archive keeps every distinct bulletin as a zstd-compressed file.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

const (
	extension    = ".txt.zst"
	checksumLen  = 12
	timestampFmt = "20060102T150405Z"
)

// Store writes raw bulletins under a directory.
// It implements pipeline.Loader.
type Store struct {
	dir     string
	encoder *zstd.Encoder
	logger  *slog.Logger
}

// NewStore creates dir if needed and returns a Store writing into it.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Store{dir: dir, encoder: enc, logger: logger}, nil
}

// FileName returns the archive name for a bulletin: fetch time then a
// checksum prefix, so names sort chronologically.
func FileName(raw domain.RawBulletin) string {
	sum := raw.Checksum
	if len(sum) > checksumLen {
		sum = sum[:checksumLen]
	}
	return raw.FetchedAt.UTC().Format(timestampFmt) + "-" + sum + extension
}

// Load archives the forecast's bulletin text. An existing file of the same
// name is left untouched.
func (s *Store) Load(ctx context.Context, f domain.Forecast) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, FileName(f.Bulletin))
	compressed := s.encoder.EncodeAll([]byte(f.Bulletin.Text), nil)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		s.logger.Debug("bulletin already archived", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	if _, err := file.Write(compressed); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("write archive file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close archive file: %w", err)
	}

	s.logger.Info("bulletin archived", "path", path, "bytes", len(compressed))
	return nil
}

// Close releases encoder resources.
func (s *Store) Close() error {
	return s.encoder.Close()
}

// ReadFile returns the bulletin text stored at path. Files ending in .zst are
// decompressed; anything else is returned as is.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(path, ".zst") {
		return string(data), nil
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return "", fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	text, err := dec.DecodeAll(data, nil)
	if err != nil {
		return "", fmt.Errorf("zstd decompression failed: %w", err)
	}
	return string(text), nil
}
