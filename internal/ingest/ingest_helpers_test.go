package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-wind-etl/internal/fixtures"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func writeExport(t *testing.T, dir, name string, e fixtures.Export) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, e.WriteFile(path))
	return path
}

func newTestAssembler(failFast bool) (*Assembler, *observability.Metrics) {
	logger := observability.DiscardLogger()
	m := observability.NewMetrics()
	return NewAssembler(NewLoader(logger), logger, m, failFast), m
}
