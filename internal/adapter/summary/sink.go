// Package summary writes per-station, per-year wind summaries of the
// normalized dataset as CSV.
package summary

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/station-wind-etl/internal/adapter/atomicfile"
	"github.com/couchcryptid/station-wind-etl/internal/analysis"
	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// Sink summarizes a frame and writes one CSV row per station and year.
// It implements pipeline.Sink.
type Sink struct {
	path       string
	summarizer *analysis.Summarizer
	logger     *slog.Logger
}

// NewSink creates a Sink writing to path.
func NewSink(path string, summarizer *analysis.Summarizer, logger *slog.Logger) *Sink {
	return &Sink{path: path, summarizer: summarizer, logger: logger}
}

func (s *Sink) Name() string { return "summary" }

func (s *Sink) Write(ctx context.Context, f *frame.Frame) error {
	summaries := s.summarizer.Summarize(ctx, f)

	err := atomicfile.Write(s.path, func(w io.Writer) error {
		return encode(w, summaries)
	})
	if err != nil {
		return fmt.Errorf("write summary %s: %w", s.path, err)
	}
	s.logger.Info("station summaries written", "path", s.path, "summaries", len(summaries))
	return nil
}

func encode(w io.Writer, summaries []domain.StationSummary) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var err error
	if len(summaries) == 0 {
		err = enc.EncodeHeader(domain.StationSummary{})
	} else {
		err = enc.Encode(summaries)
	}
	if err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
