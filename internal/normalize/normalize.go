// Package normalize turns the unified dataset into its analysis-ready form:
// one canonical missing marker, a parsed timestamp column, and no duplicate
// rows.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

// DateErrors selects how a non-blank date cell that does not match
// domain.TimestampLayout is handled.
type DateErrors string

const (
	// DateErrorsRaise fails normalization on the first malformed date.
	DateErrorsRaise DateErrors = "raise"
	// DateErrorsCoerce turns malformed dates into missing cells.
	DateErrorsCoerce DateErrors = "coerce"
)

// ParseDateErrors validates a policy name. Empty selects DateErrorsRaise.
func ParseDateErrors(s string) (DateErrors, error) {
	switch DateErrors(strings.ToLower(strings.TrimSpace(s))) {
	case "", DateErrorsRaise:
		return DateErrorsRaise, nil
	case DateErrorsCoerce:
		return DateErrorsCoerce, nil
	default:
		return "", fmt.Errorf("unknown date error policy %q (want %s or %s)", s, DateErrorsRaise, DateErrorsCoerce)
	}
}

// Stats summarizes one normalization.
type Stats struct {
	CellsFilled       int `json:"cells_filled"`
	TimestampsParsed  int `json:"timestamps_parsed"`
	TimestampsCoerced int `json:"timestamps_coerced"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	Rows              int `json:"rows"`
}

// Normalizer applies missing-value substitution, timestamp parsing, and
// duplicate elimination, in that order.
type Normalizer struct {
	logger     *slog.Logger
	metrics    *observability.Metrics
	dateErrors DateErrors
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *slog.Logger, metrics *observability.Metrics, dateErrors DateErrors) *Normalizer {
	if dateErrors == "" {
		dateErrors = DateErrorsRaise
	}
	return &Normalizer{logger: logger, metrics: metrics, dateErrors: dateErrors}
}

// Normalize returns the normalized form of f. The input is not modified.
// Applying Normalize to its own output yields an equal frame.
func (n *Normalizer) Normalize(f *frame.Frame) (*frame.Frame, Stats, error) {
	start := time.Now()
	var stats Stats

	out, filled, err := fillMissing(f)
	if err != nil {
		return nil, stats, err
	}
	stats.CellsFilled = filled

	out, parsed, coerced, err := n.parseDates(out)
	if err != nil {
		return nil, stats, err
	}
	stats.TimestampsParsed = parsed
	stats.TimestampsCoerced = coerced

	out, removed := out.DropDuplicates()
	stats.DuplicatesRemoved = removed
	stats.Rows = out.NumRows()

	n.metrics.MissingFilled.Add(float64(stats.CellsFilled))
	n.metrics.TimestampsParsed.Add(float64(stats.TimestampsParsed))
	n.metrics.TimestampsCoerced.Add(float64(stats.TimestampsCoerced))
	n.metrics.DuplicatesRemoved.Add(float64(stats.DuplicatesRemoved))
	n.metrics.RowsNormalized.Set(float64(stats.Rows))

	n.logger.Info("dataset normalized",
		"rows_in", f.NumRows(),
		"rows_out", stats.Rows,
		"cells_filled", stats.CellsFilled,
		"timestamps_parsed", stats.TimestampsParsed,
		"timestamps_coerced", stats.TimestampsCoerced,
		"duplicates_removed", stats.DuplicatesRemoved,
		"duration", time.Since(start),
	)
	return out, stats, nil
}

// fillMissing rewrites every text column so whitespace-only cells become
// missing and present cells lose surrounding whitespace, then re-detects
// numeric columns. The station and date columns stay text.
func fillMissing(f *frame.Frame) (*frame.Frame, int, error) {
	filled := 0
	series := f.Series()
	for c, s := range series {
		if s.Kind() != frame.KindText {
			continue
		}
		cells := make([]string, s.Len())
		for i := range cells {
			if s.IsMissing(i) {
				continue
			}
			v := s.Text(i)
			t := strings.TrimSpace(v)
			if t == "" {
				filled++
			}
			cells[i] = t
		}
		switch s.Name() {
		case domain.StationColumn, domain.DateColumn:
			series[c] = frame.NewTextSeries(s.Name(), cells)
		default:
			series[c] = frame.NewSeries(s.Name(), cells)
		}
	}
	out, err := frame.New(series...)
	if err != nil {
		return nil, 0, fmt.Errorf("fill missing values: %w", err)
	}
	return out, filled, nil
}

// parseDates replaces the date column with a time column parsed using
// domain.TimestampLayout. An already parsed column is left alone.
func (n *Normalizer) parseDates(f *frame.Frame) (*frame.Frame, int, int, error) {
	s, ok := f.Column(domain.DateColumn)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: no %q column", domain.ErrMalformedTimestamp, domain.DateColumn)
	}
	if s.Kind() == frame.KindTime {
		return f, 0, 0, nil
	}

	times := make([]time.Time, s.Len())
	valid := make([]bool, s.Len())
	parsed, coerced := 0, 0
	for i := range times {
		if s.IsMissing(i) {
			continue
		}
		t, err := domain.ParseTimestamp(s.Text(i))
		if err != nil {
			if n.dateErrors != DateErrorsCoerce {
				return nil, 0, 0, fmt.Errorf("row %d: %w", i, err)
			}
			coerced++
			n.logger.Debug("malformed timestamp coerced to missing", "row", i, "value", s.Text(i))
			continue
		}
		times[i], valid[i] = t, true
		parsed++
	}
	if coerced > 0 {
		n.logger.Warn("malformed timestamps coerced to missing", "count", coerced)
	}

	out, err := f.With(frame.NewTimeSeries(domain.DateColumn, times, valid))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("parse timestamps: %w", err)
	}
	return out, parsed, coerced, nil
}
