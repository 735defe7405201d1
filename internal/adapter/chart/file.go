package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

// FileRenderer redraws the track chart to a fixed path for every loaded
// forecast.
type FileRenderer struct {
	path   string
	logger *slog.Logger
}

// NewFileRenderer creates a loader that writes the chart PNG to path.
func NewFileRenderer(path string, logger *slog.Logger) *FileRenderer {
	return &FileRenderer{path: path, logger: logger}
}

// Title returns the chart title for a bulletin issue label.
func Title(issueLabel string) string {
	return "UKMET TC Guidance " + issueLabel
}

// Load renders the forecast and replaces the file atomically. A forecast
// without tracks leaves the previous chart in place.
func (r *FileRenderer) Load(ctx context.Context, f domain.Forecast) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Render(&buf, Title(f.IssueLabel), f.Tracks); err != nil {
		if errors.Is(err, ErrNoTracks) {
			r.logger.Info("no tracks in bulletin, chart not updated", "path", r.path)
			return nil
		}
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".chart-*.png")
	if err != nil {
		return fmt.Errorf("create temp chart: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write chart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close chart: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace chart: %w", err)
	}

	r.logger.Info("chart written", "path", r.path, "tracks", len(f.Tracks))
	return nil
}
