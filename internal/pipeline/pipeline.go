package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/station-wind-etl/internal/analysis"
	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
	"github.com/couchcryptid/station-wind-etl/internal/ingest"
	"github.com/couchcryptid/station-wind-etl/internal/normalize"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

// Assembler builds the unified dataset from the exports under a root directory.
type Assembler interface {
	Assemble(ctx context.Context, root string) (*frame.Frame, ingest.Report, error)
}

// Normalizer turns the unified dataset into the normalized dataset.
type Normalizer interface {
	Normalize(f *frame.Frame) (*frame.Frame, normalize.Stats, error)
}

// Sink receives the normalized dataset.
type Sink interface {
	Name() string
	Write(ctx context.Context, f *frame.Frame) error
}

// Result is the report of one run.
type Result struct {
	Report     ingest.Report            `json:"report"`
	Missing    []analysis.ColumnMissing `json:"missing"`
	Stats      normalize.Stats          `json:"stats"`
	Sinks      []string                 `json:"sinks"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`

	// Dataset is the normalized dataset handed to the sinks.
	Dataset *frame.Frame `json:"-"`
}

// Pipeline runs extract, inspect, transform, and load once over a data
// directory.
type Pipeline struct {
	assembler  Assembler
	normalizer Normalizer
	sinks      []Sink
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. Sinks are written in the order given.
func New(a Assembler, n Normalizer, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		assembler:  a,
		normalizer: n,
		sinks:      sinks,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run processes every export under root. The first error aborts the run;
// the returned Result holds whatever was completed before it.
func (p *Pipeline) Run(ctx context.Context, root string) (Result, error) {
	res := Result{StartedAt: domain.Now()}
	p.logger.Info("pipeline started", "root", root, "sinks", len(p.sinks))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := time.Now()
	unified, report, err := p.assembler.Assemble(ctx, root)
	p.observeStage("assemble", start)
	res.Report = report
	if err != nil {
		return res, fmt.Errorf("assemble %s: %w", root, err)
	}

	res.Missing = analysis.MissingCounts(unified)
	for _, m := range res.Missing {
		if m.Missing > 0 {
			p.logger.Debug("missing values", "column", m.Column, "missing", m.Missing, "rows", m.Rows)
		}
	}

	start = time.Now()
	normalized, stats, err := p.normalizer.Normalize(unified)
	p.observeStage("normalize", start)
	if err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	res.Stats = stats
	res.Dataset = normalized

	for _, s := range p.sinks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start = time.Now()
		err := s.Write(ctx, normalized)
		p.observeStage("sink", start)
		if err != nil {
			p.metrics.SinkWrites.WithLabelValues(s.Name(), "error").Inc()
			return res, fmt.Errorf("sink %s: %w", s.Name(), err)
		}
		p.metrics.SinkWrites.WithLabelValues(s.Name(), "success").Inc()
		res.Sinks = append(res.Sinks, s.Name())
		p.logger.Info("sink written", "sink", s.Name(), "rows", normalized.NumRows())
	}

	res.FinishedAt = domain.Now()
	p.metrics.LastRunCompletedAt.Set(float64(res.FinishedAt.Unix()))
	p.logger.Info("pipeline finished",
		"files", report.FilesLoaded,
		"rows", stats.Rows,
		"duplicates_removed", stats.DuplicatesRemoved,
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
	return res, nil
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
