// Package csvfile writes the normalized dataset as a comma-delimited file in
// the export conventions: lower-case month timestamps and a configurable
// placeholder for missing cells.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/station-wind-etl/internal/adapter/atomicfile"
	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// Sink writes a frame to a CSV file. It implements pipeline.Sink.
type Sink struct {
	path        string
	placeholder string
	logger      *slog.Logger
}

// NewSink creates a Sink writing to path. Missing cells are written as
// placeholder.
func NewSink(path, placeholder string, logger *slog.Logger) *Sink {
	return &Sink{path: path, placeholder: placeholder, logger: logger}
}

func (s *Sink) Name() string { return "csv" }

// Write replaces the file at the sink path with f.
func (s *Sink) Write(ctx context.Context, f *frame.Frame) error {
	err := atomicfile.Write(s.path, func(w io.Writer) error {
		return s.encode(ctx, w, f)
	})
	if err != nil {
		return fmt.Errorf("write csv %s: %w", s.path, err)
	}
	s.logger.Info("normalized dataset written", "path", s.path, "rows", f.NumRows(), "columns", f.NumColumns())
	return nil
}

func (s *Sink) encode(ctx context.Context, w io.Writer, f *frame.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns()); err != nil {
		return err
	}

	series := f.Series()
	record := make([]string, len(series))
	for i := range f.NumRows() {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for c, col := range series {
			record[c] = s.cell(col, i)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Sink) cell(col *frame.Series, i int) string {
	if col.IsMissing(i) {
		return s.placeholder
	}
	if t, ok := col.Time(i); ok {
		return domain.FormatTimestamp(t)
	}
	return col.Text(i)
}
