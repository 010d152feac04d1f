package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "station_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for one
// ingestion run. Each Metrics owns its registry so a run (or a test) never
// collides with another.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion metrics.
	FilesDiscovered  prometheus.Counter
	FilesLoaded      prometheus.Counter
	FilesFailed      prometheus.Counter
	RowsLoaded       prometheus.Counter
	FileLoadDuration prometheus.Histogram

	// Normalization metrics.
	MissingFilled      prometheus.Counter
	TimestampsParsed   prometheus.Counter
	TimestampsCoerced  prometheus.Counter
	DuplicatesRemoved  prometheus.Counter
	RowsNormalized     prometheus.Gauge
	StageDuration      *prometheus.HistogramVec // labels: stage={assemble,normalize,sink}
	SinkWrites         *prometheus.CounterVec   // labels: sink, outcome={success,error}
	PipelineRunning    prometheus.Gauge
	LastRunCompletedAt prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
}

// NewMetrics creates all run metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FilesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_discovered_total",
			Help:      "CSV exports found under the data directory.",
		}),
		FilesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_loaded_total",
			Help:      "CSV exports parsed into the unified dataset.",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "CSV exports rejected as malformed.",
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Data rows read from station exports.",
		}),
		FileLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_load_duration_seconds",
			Help:      "Time to locate, parse, and tag one station export.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		MissingFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_cells_filled_total",
			Help:      "Blank cells replaced by the missing marker during normalization.",
		}),
		TimestampsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestamps_parsed_total",
			Help:      "Date cells parsed with the fixed layout.",
		}),
		TimestampsCoerced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestamps_coerced_total",
			Help:      "Unparseable date cells replaced by the missing marker.",
		}),
		DuplicatesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_rows_removed_total",
			Help:      "Rows dropped as exact duplicates.",
		}),
		RowsNormalized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_normalized",
			Help:      "Rows in the normalized dataset of the last run.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Dataset writes by sink and outcome.",
		}, []string{"sink", "outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		LastRunCompletedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_completed_timestamp_seconds",
			Help:      "Unix time at which the last successful run finished.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Station geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Station geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	m.registry.MustRegister(
		m.FilesDiscovered,
		m.FilesLoaded,
		m.FilesFailed,
		m.RowsLoaded,
		m.FileLoadDuration,
		m.MissingFilled,
		m.TimestampsParsed,
		m.TimestampsCoerced,
		m.DuplicatesRemoved,
		m.RowsNormalized,
		m.StageDuration,
		m.SinkWrites,
		m.PipelineRunning,
		m.LastRunCompletedAt,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
	)

	return m
}

// Registry exposes the underlying registry, e.g. for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metric values in the text exposition
// format, for the node_exporter textfile collector. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
