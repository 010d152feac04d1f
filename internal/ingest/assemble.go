package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/station-wind-etl/internal/frame"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

// Report records what an assembly run consumed.
type Report struct {
	Root            string   `json:"root"`
	FilesDiscovered int      `json:"files_discovered"`
	FilesLoaded     int      `json:"files_loaded"`
	FilesFailed     int      `json:"files_failed"`
	Rows            int      `json:"rows"`
	Sources         []Source `json:"sources"`
}

// Assembler discovers and loads every export under a root directory and
// concatenates them into the unified dataset.
type Assembler struct {
	loader   *Loader
	logger   *slog.Logger
	metrics  *observability.Metrics
	failFast bool
}

// NewAssembler creates an Assembler. With failFast the first malformed file
// aborts the run; otherwise every file is attempted and all failures are
// returned together.
func NewAssembler(loader *Loader, logger *slog.Logger, metrics *observability.Metrics, failFast bool) *Assembler {
	return &Assembler{
		loader:   loader,
		logger:   logger,
		metrics:  metrics,
		failFast: failFast,
	}
}

// Assemble builds the unified dataset from the exports under root. The
// report is populated as far as the run got, even on error.
func (a *Assembler) Assemble(ctx context.Context, root string) (*frame.Frame, Report, error) {
	report := Report{Root: root}

	paths, err := Discover(root)
	if err != nil {
		return nil, report, err
	}
	report.FilesDiscovered = len(paths)
	a.metrics.FilesDiscovered.Add(float64(len(paths)))
	a.logger.Info("station exports discovered", "root", root, "files", len(paths))

	frames := make([]*frame.Frame, 0, len(paths))
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		start := time.Now()
		f, src, err := a.loader.Load(path)
		a.metrics.FileLoadDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			report.FilesFailed++
			a.metrics.FilesFailed.Inc()
			a.logger.Error("station export rejected", "path", path, "error", err)
			if a.failFast {
				return nil, report, err
			}
			errs = append(errs, err)
			continue
		}

		report.FilesLoaded++
		report.Sources = append(report.Sources, src)
		a.metrics.FilesLoaded.Inc()
		a.metrics.RowsLoaded.Add(float64(src.Rows))
		frames = append(frames, f)
	}

	if len(errs) > 0 {
		return nil, report, errors.Join(errs...)
	}

	unified := frame.Concat(frames...)
	report.Rows = unified.NumRows()

	a.logger.Info("unified dataset assembled",
		"files_discovered", report.FilesDiscovered,
		"files_loaded", report.FilesLoaded,
		"rows", report.Rows,
		"columns", unified.NumColumns(),
	)
	return unified, report, nil
}
