package ingest

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/fixtures"
)

func TestAssemble_TwoStations(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "mace_head.csv", fixtures.MaceHead())
	writeExport(t, root, "south/roches_point.csv", fixtures.RochesPoint())

	a, m := newTestAssembler(true)
	f, report, err := a.Assemble(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 10, f.NumRows())
	assert.Equal(t, 2, report.FilesDiscovered)
	assert.Equal(t, 2, report.FilesLoaded)
	assert.Zero(t, report.FilesFailed)
	assert.Equal(t, 10, report.Rows)
	assert.Len(t, report.Sources, 2)
	assert.Zero(t, f.DuplicateCount())

	station, ok := f.Column(domain.StationColumn)
	require.True(t, ok)
	counts := map[string]int{}
	for i := range f.NumRows() {
		counts[station.Text(i)]++
	}
	assert.Equal(t, map[string]int{"MACE HEAD": 5, "ROCHES POINT": 5}, counts)

	// Extended columns exist once and are missing exactly on the core-only rows.
	for _, c := range []string{"ww", "w", "vis", "clht", "clamt"} {
		s, ok := f.Column(c)
		require.True(t, ok, c)
		for i, row := range f.Rows() {
			assert.Equal(t, row.Text(domain.StationColumn) == "MACE HEAD", s.IsMissing(i), "%s row %d", c, i)
		}
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.FilesDiscovered), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(m.FilesLoaded), 1e-9)
	assert.InDelta(t, 10, testutil.ToFloat64(m.RowsLoaded), 1e-9)
}

func TestAssemble_FailFast(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "good.csv", fixtures.MaceHead())
	bad := writeFile(t, root, "bad.csv", "Station Name: X", "no header here")

	a, m := newTestAssembler(true)
	f, report, err := a.Assemble(context.Background(), root)
	require.ErrorIs(t, err, domain.ErrMalformedFile)
	require.ErrorIs(t, err, domain.ErrHeaderNotFound)
	assert.Nil(t, f)
	assert.Contains(t, err.Error(), bad)
	assert.Equal(t, 1, report.FilesFailed)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FilesFailed), 1e-9)
}

func TestAssemble_CollectsEveryFailure(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "good.csv", fixtures.MaceHead())
	bad1 := writeFile(t, root, "bad1.csv", "nothing")
	bad2 := writeFile(t, root, "sub/bad2.csv", "date only")

	a, _ := newTestAssembler(false)
	_, report, err := a.Assemble(context.Background(), root)
	require.ErrorIs(t, err, domain.ErrMalformedFile)
	assert.Contains(t, err.Error(), bad1)
	assert.Contains(t, err.Error(), bad2)
	assert.Equal(t, 3, report.FilesDiscovered)
	assert.Equal(t, 1, report.FilesLoaded)
	assert.Equal(t, 2, report.FilesFailed)
}

func TestAssemble_EmptyRoot(t *testing.T) {
	a, _ := newTestAssembler(true)
	_, _, err := a.Assemble(context.Background(), t.TempDir())
	require.ErrorIs(t, err, domain.ErrDiscoveryEmpty)
}

func TestAssemble_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "a.csv", fixtures.MaceHead())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, _ := newTestAssembler(true)
	_, _, err := a.Assemble(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAssemble_Synthetic(t *testing.T) {
	root := t.TempDir()
	for i, name := range []string{"a", "b", "c"} {
		rng := rand.New(rand.NewPCG(uint64(i), 7))
		e := fixtures.Synthetic(name, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 24, i%2 == 0, rng)
		writeExport(t, root, filepath.Join(name, name+".csv"), e)
	}

	a, _ := newTestAssembler(true)
	f, report, err := a.Assemble(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 72, f.NumRows())
	assert.Equal(t, 3, report.FilesLoaded)
}
