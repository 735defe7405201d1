package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/archive"
	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/chart"
	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/storm-bulletin-etl/internal/adapter/kafka"
	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/noaa"
	"github.com/couchcryptid/storm-bulletin-etl/internal/config"
	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
	"github.com/couchcryptid/storm-bulletin-etl/internal/observability"
	"github.com/couchcryptid/storm-bulletin-etl/internal/pipeline"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Loaders run in this order: archive first so the raw text is kept
	// even when publishing fails.
	var (
		loaders []pipeline.Loader
		closers []io.Closer
	)
	if cfg.ArchiveDir != "" {
		store, err := archive.NewStore(cfg.ArchiveDir, logger)
		if err != nil {
			logger.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, store)
		closers = append(closers, store)
		logger.Info("bulletin archive enabled", "dir", cfg.ArchiveDir)
	}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		closers = append(closers, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}
	if cfg.ChartPath != "" {
		loaders = append(loaders, chart.NewFileRenderer(cfg.ChartPath, logger))
		logger.Info("chart rendering enabled", "path", cfg.ChartPath)
	}

	fetcher := noaa.NewClient(cfg.BulletinURL, cfg.FetchTimeout, clockwork.NewRealClock(), metrics, logger)
	transformer := pipeline.NewTransformer(geocoder, logger)

	p := pipeline.New(fetcher, transformer, logger, metrics, cfg.PollInterval, loaders...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return p.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
