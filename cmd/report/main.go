// Command report runs the storm impact analysis: it loads the NOAA
// storm-events dataset, reduces it to ranked per-category impact totals, and
// writes chart-data JSON for the external renderer.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/chartdata"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/httpserver"
	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
	"github.com/couchcryptid/storm-impact-report/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "optional path to a YAML config file")
	flag.Parse()

	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format).
		With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	floor, err := cfg.Analysis.Floor()
	if err != nil {
		// Unreachable after config validation, but the parse is kept explicit.
		logger.Error("invalid date floor", "error", err)
		os.Exit(1)
	}

	loader := csvfile.NewLoader(cfg.Data.Path, logger)
	writer := chartdata.NewWriter(cfg.Output.Dir, logger)
	p := pipeline.New(loader, writer, logger, metrics, floor, cfg.Analysis.SignificanceRatio)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional debug listener for watching a long run.
	var srv *httpserver.Server
	if cfg.Metrics.Addr != "" {
		srv = httpserver.NewServer(cfg.Metrics.Addr, metrics.Registry(), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("debug http server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("debug http server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("report run failed", "error", runErr)
		os.Exit(1)
	}
}
