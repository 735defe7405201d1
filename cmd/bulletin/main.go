// Command bulletin parses one UKMET guidance bulletin and prints its storms.
//
// Usage:
//
//	go run ./cmd/bulletin                       # fetch the live bulletin
//	go run ./cmd/bulletin -file archive/20210522T160509Z-0123456789ab.txt.zst -format yaml
//	go run ./cmd/bulletin -chart ukmet.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/archive"
	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/chart"
	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/noaa"
	"github.com/couchcryptid/storm-bulletin-etl/internal/config"
	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
	"github.com/couchcryptid/storm-bulletin-etl/internal/observability"
	"github.com/couchcryptid/storm-bulletin-etl/internal/report"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "bulletin:", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	url := flag.String("url", config.DefaultBulletinURL, "bulletin URL")
	file := flag.String("file", "", "read the bulletin from a file (plain or .zst) instead of -url")
	format := flag.String("format", "table", "output format: table, json or yaml")
	chartPath := flag.String("chart", "", "also write the track chart PNG here")
	timeout := flag.Duration("timeout", 10*time.Second, "fetch timeout")
	flag.Parse()

	outFormat, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	raw, err := load(*url, *file, *timeout, logger)
	if err != nil {
		return err
	}

	f, err := domain.BuildForecast(raw)
	if err != nil {
		return err
	}

	if *chartPath != "" {
		if err := writeChart(*chartPath, f); err != nil {
			return err
		}
	}

	switch outFormat {
	case report.FormatJSON:
		return report.WriteJSON(out, report.NewBulletinDocument(f))
	case report.FormatYAML:
		return report.WriteYAML(out, report.NewBulletinDocument(f))
	default:
		return report.WriteStormTable(out, f)
	}
}

func load(url, file string, timeout time.Duration, logger *slog.Logger) (domain.RawBulletin, error) {
	if file == "" {
		client := noaa.NewClient(url, timeout, clockwork.NewRealClock(), observability.NewMetrics(), logger)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return client.Fetch(ctx)
	}

	text, err := archive.ReadFile(file)
	if err != nil {
		return domain.RawBulletin{}, err
	}
	return domain.NewRawBulletin(file, text, time.Now()), nil
}

func writeChart(path string, f domain.Forecast) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.Render(out, chart.Title(f.IssueLabel), f.Tracks); err != nil {
		out.Close()
		if errors.Is(err, chart.ErrNoTracks) {
			os.Remove(path)
		}
		return err
	}
	return out.Close()
}
