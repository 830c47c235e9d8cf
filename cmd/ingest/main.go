package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/mossdale/weather-ingest/internal/adapter/http"
	"github.com/mossdale/weather-ingest/internal/adapter/rawcsv"
	"github.com/mossdale/weather-ingest/internal/adapter/sqlite"
	"github.com/mossdale/weather-ingest/internal/config"
	"github.com/mossdale/weather-ingest/internal/observability"
	"github.com/mossdale/weather-ingest/internal/pipeline"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	db, err := sqlite.Open(cfg.StorePath, cfg.StoreDSN)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := sqlite.NewStore(db, clock, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}
	if n, err := store.Count(ctx); err == nil {
		logger.Info("store opened", "records", n)
	}

	// The metrics listener is optional; an ingest run is short-lived, so it
	// only earns its keep under a supervisor that scrapes between runs.
	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, store, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	source := rawcsv.NewSource(cfg.InputPath, cfg.ArchivePath, logger)
	p := pipeline.New(source, store, pipeline.Options{
		Bounds:       cfg.Bounds(),
		SameDayGuard: cfg.SameDayGuard,
	}, logger, metrics, clock)

	summary, runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		cancel()
	}

	if runErr != nil {
		if errors.Is(runErr, rawcsv.ErrMissingInput) {
			logger.Error("raw input file not found; run the scraper first",
				"path", cfg.InputPath)
		} else {
			logger.Error("ingest run failed", "run_id", summary.RunID, "error", runErr)
		}
		os.Exit(1)
	}
}
