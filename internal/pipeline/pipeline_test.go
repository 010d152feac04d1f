package pipeline_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-wind-etl/internal/analysis"
	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/fixtures"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
	"github.com/couchcryptid/station-wind-etl/internal/ingest"
	"github.com/couchcryptid/station-wind-etl/internal/normalize"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
	"github.com/couchcryptid/station-wind-etl/internal/pipeline"
)

// --- mocks ---

type mockSink struct {
	name    string
	err     error
	written []*frame.Frame
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Write(_ context.Context, f *frame.Frame) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, f)
	return nil
}

type failingAssembler struct{ err error }

func (a failingAssembler) Assemble(_ context.Context, root string) (*frame.Frame, ingest.Report, error) {
	return nil, ingest.Report{Root: root, FilesFailed: 1}, a.err
}

// --- helpers ---

func newPipeline(sinks ...pipeline.Sink) (*pipeline.Pipeline, *observability.Metrics) {
	logger := observability.DiscardLogger()
	m := observability.NewMetrics()
	a := ingest.NewAssembler(ingest.NewLoader(logger), logger, m, true)
	n := normalize.NewNormalizer(logger, m, normalize.DateErrorsRaise)
	return pipeline.New(a, n, sinks, logger, m), m
}

func writeStations(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, fixtures.MaceHead().WriteFile(filepath.Join(root, "mace_head.csv")))
	require.NoError(t, fixtures.RochesPoint().WriteFile(filepath.Join(root, "roches", "roches_point.csv")))
	return root
}

func useFakeClock(t *testing.T, at time.Time) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { domain.SetClock(nil) })
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	at := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	useFakeClock(t, at)

	first := &mockSink{name: "first"}
	second := &mockSink{name: "second"}
	p, m := newPipeline(first, second)

	res, err := p.Run(context.Background(), writeStations(t))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Report.FilesLoaded)
	assert.Equal(t, 10, res.Stats.Rows)
	assert.Equal(t, []string{"first", "second"}, res.Sinks)
	assert.Equal(t, at, res.StartedAt)
	assert.Equal(t, at, res.FinishedAt)

	require.Len(t, first.written, 1)
	require.Len(t, second.written, 1)
	assert.Same(t, res.Dataset, first.written[0])
	assert.Equal(t, 10, res.Dataset.NumRows())

	assert.InDelta(t, 1, testutil.ToFloat64(m.SinkWrites.WithLabelValues("first", "success")), 1e-9)
	assert.InDelta(t, float64(at.Unix()), testutil.ToFloat64(m.LastRunCompletedAt), 1e-9)
	assert.Zero(t, testutil.ToFloat64(m.PipelineRunning))
}

func TestPipeline_Run_MissingCountedBeforeNormalization(t *testing.T) {
	p, _ := newPipeline()
	res, err := p.Run(context.Background(), writeStations(t))
	require.NoError(t, err)

	got := map[string]int{}
	for _, c := range res.Missing {
		got[c.Column] = c.Missing
	}
	want := map[string]int{
		"date": 0, "wdsp": 0, "station": 0,
		// Extended columns are absent from the five core-only rows.
		"ww": 5, "vis": 5, "clht": 5,
		// Whitespace cells are still present before normalization.
		"sun": 5,
	}
	for col, n := range want {
		assert.Equal(t, n, got[col], col)
	}
}

func TestPipeline_Run_AssembleError(t *testing.T) {
	logger := observability.DiscardLogger()
	m := observability.NewMetrics()
	sink := &mockSink{name: "csv"}
	p := pipeline.New(
		failingAssembler{err: domain.ErrDiscoveryEmpty},
		normalize.NewNormalizer(logger, m, normalize.DateErrorsRaise),
		[]pipeline.Sink{sink}, logger, m,
	)

	res, err := p.Run(context.Background(), "/data")
	require.ErrorIs(t, err, domain.ErrDiscoveryEmpty)
	assert.Equal(t, 1, res.Report.FilesFailed)
	assert.Empty(t, sink.written)
}

func TestPipeline_Run_SinkErrorAborts(t *testing.T) {
	boom := errors.New("disk full")
	bad := &mockSink{name: "bad", err: boom}
	after := &mockSink{name: "after"}
	p, m := newPipeline(bad, after)

	res, err := p.Run(context.Background(), writeStations(t))
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "sink bad")
	assert.Empty(t, after.written)
	assert.Empty(t, res.Sinks)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SinkWrites.WithLabelValues("bad", "error")), 1e-9)
}

func TestPipeline_Run_MalformedTimestamp(t *testing.T) {
	root := t.TempDir()
	e := fixtures.MaceHead()
	e.Rows[2][0] = "2003-08-13 03:00"
	require.NoError(t, e.WriteFile(filepath.Join(root, "bad_dates.csv")))

	sink := &mockSink{name: "csv"}
	p, _ := newPipeline(sink)
	_, err := p.Run(context.Background(), root)
	require.ErrorIs(t, err, domain.ErrMalformedTimestamp)
	assert.Empty(t, sink.written)
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newPipeline()
	_, err := p.Run(ctx, writeStations(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Run_GeneratedExports(t *testing.T) {
	root := t.TempDir()
	rng := rand.New(rand.NewPCG(1, 2))
	start := time.Date(2019, 12, 31, 20, 0, 0, 0, time.UTC)
	for i, name := range []string{"VALENTIA", "MALIN HEAD", "BELMULLET"} {
		e := fixtures.Synthetic(name, start, 12, i%2 == 1, rng)
		require.NoError(t, e.WriteFile(filepath.Join(root, name+".csv")))
	}
	// A second copy of one station duplicates all of its rows.
	dup := fixtures.Synthetic("VALENTIA", start, 12, false, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, dup.WriteFile(filepath.Join(root, "copy", "VALENTIA.csv")))

	sink := &mockSink{name: "memory"}
	p, _ := newPipeline(sink)
	res, err := p.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 48, res.Report.Rows)
	assert.Equal(t, 12, res.Stats.DuplicatesRemoved)
	assert.Equal(t, 36, res.Dataset.NumRows())

	summaries := analysis.NewSummarizer(nil, "", observability.DiscardLogger()).
		Summarize(context.Background(), res.Dataset)

	type key struct {
		Station string
		Year    int
		Rows    int
	}
	var got []key
	for _, s := range summaries {
		got = append(got, key{s.Station, s.Year, s.Rows})
	}
	want := []key{
		{"BELMULLET", 2019, 4}, {"BELMULLET", 2020, 8},
		{"MALIN HEAD", 2019, 4}, {"MALIN HEAD", 2020, 8},
		{"VALENTIA", 2019, 4}, {"VALENTIA", 2020, 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}
