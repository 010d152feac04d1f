// Command windetl ingests every station export under a data directory,
// normalizes the unified dataset, and writes it to the configured sinks.
//
// Usage:
//
//	windetl [DATA_DIR]
//
// All other settings come from the environment; see internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/station-wind-etl/internal/config"
	"github.com/couchcryptid/station-wind-etl/internal/ingest"
	"github.com/couchcryptid/station-wind-etl/internal/normalize"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
	"github.com/couchcryptid/station-wind-etl/internal/pipeline"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [DATA_DIR]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if dir := flag.Arg(0); dir != "" {
		cfg.DataDir = dir
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, logger, metrics)

	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Error("metrics textfile not written", "path", cfg.MetricsTextfile, "error", werr)
		}
	}
	if err != nil {
		logger.Error("run failed", "data_dir", cfg.DataDir, "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	sinks, closers, err := buildSinks(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer closeAll(closers, cfg.ShutdownTimeout, logger)

	loader := ingest.NewLoader(logger)
	assembler := ingest.NewAssembler(loader, logger, metrics, cfg.FailFast)
	normalizer := normalize.NewNormalizer(logger, metrics, cfg.DateErrors)

	p := pipeline.New(assembler, normalizer, sinks, logger, metrics)
	res, err := p.Run(ctx, cfg.DataDir)
	if err != nil {
		return err
	}

	logger.Info("run complete",
		"files_loaded", res.Report.FilesLoaded,
		"rows", res.Stats.Rows,
		"cells_filled", res.Stats.CellsFilled,
		"timestamps_coerced", res.Stats.TimestampsCoerced,
		"duplicates_removed", res.Stats.DuplicatesRemoved,
		"sinks", res.Sinks,
	)
	return nil
}

// closeAll closes sinks holding connections, giving up after timeout.
func closeAll(closers []namedCloser, timeout time.Duration, logger *slog.Logger) {
	if len(closers) == 0 {
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Error("sink close error", "sink", c.Name(), "error", err)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Error("sink close timed out", "error", errors.New("shutdown timeout exceeded"), "timeout", timeout)
	}
}
