package main

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/station-wind-etl/internal/adapter/columnar"
	"github.com/couchcryptid/station-wind-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/station-wind-etl/internal/adapter/kafka"
	"github.com/couchcryptid/station-wind-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/station-wind-etl/internal/adapter/summary"
	"github.com/couchcryptid/station-wind-etl/internal/analysis"
	"github.com/couchcryptid/station-wind-etl/internal/config"
	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
	"github.com/couchcryptid/station-wind-etl/internal/pipeline"
)

type namedCloser interface {
	Name() string
	Close() error
}

// buildSinks wires the sinks enabled by cfg in a fixed order: the dataset
// file, the summary file, then Kafka.
func buildSinks(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) ([]pipeline.Sink, []namedCloser, error) {
	var (
		sinks   []pipeline.Sink
		closers []namedCloser
	)

	switch cfg.OutputFormat {
	case config.FormatCSV:
		sinks = append(sinks, csvfile.NewSink(cfg.OutputPath, cfg.MissingPlaceholder, logger))
	case config.FormatArrow:
		sinks = append(sinks, columnar.NewArrowSink(cfg.OutputPath, logger))
	case config.FormatParquet:
		sinks = append(sinks, columnar.NewParquetSink(cfg.OutputPath, logger))
	case config.FormatNone:
	default:
		return nil, nil, fmt.Errorf("unsupported output format %q", cfg.OutputFormat)
	}

	if cfg.SummaryPath != "" {
		// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
		var geocoder domain.Geocoder
		if cfg.MapboxEnabled {
			client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
			geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
			logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
		} else {
			logger.Info("mapbox geocoding disabled")
		}
		summarizer := analysis.NewSummarizer(geocoder, cfg.GeocodeRegion, logger)
		sinks = append(sinks, summary.NewSink(cfg.SummaryPath, summarizer, logger))
	}

	if cfg.KafkaEnabled() {
		k := kafkaadapter.NewSink(cfg, logger)
		sinks = append(sinks, k)
		closers = append(closers, k)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "batch_size", cfg.BatchSize)
	}

	return sinks, closers, nil
}
