package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/station-wind-etl/internal/normalize"
)

// Output formats for the normalized dataset.
const (
	FormatCSV     = "csv"
	FormatArrow   = "arrow"
	FormatParquet = "parquet"
	FormatNone    = "none"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	DataDir            string
	OutputPath         string
	OutputFormat       string
	SummaryPath        string
	MissingPlaceholder string
	FailFast           bool
	DateErrors         normalize.DateErrors

	LogLevel        string
	LogFormat       string
	MetricsTextfile string
	ShutdownTimeout time.Duration

	// Kafka sink configuration. The sink is enabled when brokers are set.
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox geocoding configuration for station summaries.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	GeocodeRegion   string
}

// KafkaEnabled reports whether normalized rows are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err := time.ParseDuration(mapboxTimeoutStr)
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	failFast, err := strconv.ParseBool(sharedcfg.EnvOrDefault("FAIL_FAST", "true"))
	if err != nil {
		return nil, errors.New("invalid FAIL_FAST")
	}

	dateErrors, err := normalize.ParseDateErrors(os.Getenv("DATE_ERRORS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATE_ERRORS: %w", err)
	}

	format := strings.ToLower(sharedcfg.EnvOrDefault("OUTPUT_FORMAT", FormatCSV))
	switch format {
	case FormatCSV, FormatArrow, FormatParquet, FormatNone:
	default:
		return nil, fmt.Errorf("invalid OUTPUT_FORMAT %q", format)
	}

	var brokers []string
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DataDir:            sharedcfg.EnvOrDefault("DATA_DIR", "./data"),
		OutputPath:         sharedcfg.EnvOrDefault("OUTPUT_PATH", defaultOutputPath(format)),
		OutputFormat:       format,
		SummaryPath:        os.Getenv("SUMMARY_PATH"),
		MissingPlaceholder: os.Getenv("MISSING_PLACEHOLDER"),
		FailFast:           failFast,
		DateErrors:         dateErrors,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:       brokers,
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "normalized-weather-observations"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		GeocodeRegion:   sharedcfg.EnvOrDefault("GEOCODE_REGION", "Ireland"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.OutputFormat != FormatNone && cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required unless OUTPUT_FORMAT is none")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func defaultOutputPath(format string) string {
	switch format {
	case FormatArrow:
		return "./out/normalized.arrow"
	case FormatParquet:
		return "./out/normalized.parquet"
	default:
		return "./out/normalized.csv"
	}
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
