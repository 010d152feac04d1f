// Command validate re-reads a normalized CSV written by windetl and checks
// that it still satisfies the dataset invariants: required columns, parseable
// timestamps, tagged stations, and unique rows. Given the source directory it
// also re-runs ingestion and compares per-station row counts.
//
// Usage:
//
//	go run ./cmd/validate -file out/normalized.csv -data-dir data
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/station-wind-etl/internal/analysis"
	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/ingest"
	"github.com/couchcryptid/station-wind-etl/internal/normalize"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

// maxReported caps the errors printed per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// table is a normalized CSV held in memory.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func (t *table) get(row []string, col string) (string, bool) {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func main() {
	file := flag.String("file", "", "normalized CSV to validate")
	dataDir := flag.String("data-dir", "", "optional source directory to cross-check row counts against")
	placeholder := flag.String("placeholder", "", "missing-value placeholder used when the file was written")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*file, *dataDir, *placeholder); code != 0 {
		os.Exit(code)
	}
}

func run(file, dataDir, placeholder string) int {
	fmt.Println("=== Normalized Dataset Validation ===")
	fmt.Println()

	t, err := loadCSV(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", file, err)
		return 1
	}

	phases := []*phase{
		validateSchema(t),
		validateTimestamps(t, placeholder),
		validateStations(t, placeholder),
		validateUniqueness(t),
	}
	if dataDir != "" {
		phases = append(phases, validateSourceParity(t, dataDir))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d, columns: %d\n", len(t.rows), len(t.header))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Printf("  ... and %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}

func loadCSV(path string) (*table, error) {
	//nolint:gosec // G304: path is an operator-supplied flag.
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	t := &table{header: records[0], index: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, h := range t.header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t, nil
}

func validateSchema(t *table) *phase {
	p := &phase{name: "Schema"}
	for _, col := range []string{domain.DateColumn, domain.StationColumn, domain.HeaderWindToken} {
		if _, ok := t.index[col]; !ok {
			p.errorf("required column %q missing", col)
		}
	}
	if len(t.index) != len(t.header) {
		p.errorf("header has duplicate column names: %v", t.header)
	}
	for i, row := range t.rows {
		if len(row) != len(t.header) {
			p.errorf("row %d: %d fields, header has %d", i, len(row), len(t.header))
		}
	}
	return p
}

func validateTimestamps(t *table, placeholder string) *phase {
	p := &phase{name: "Timestamps"}
	for i, row := range t.rows {
		v, ok := t.get(row, domain.DateColumn)
		if !ok {
			continue
		}
		if v == placeholder {
			p.errorf("row %d: date missing", i)
			continue
		}
		ts, err := domain.ParseTimestamp(v)
		if err != nil {
			p.errorf("row %d: %v", i, err)
			continue
		}
		if got := domain.FormatTimestamp(ts); got != v {
			p.errorf("row %d: date %q not in canonical form %q", i, v, got)
		}
	}
	return p
}

func validateStations(t *table, placeholder string) *phase {
	p := &phase{name: "Station tags"}
	for i, row := range t.rows {
		v, ok := t.get(row, domain.StationColumn)
		if !ok {
			continue
		}
		switch {
		case v == "" || v == placeholder:
			p.errorf("row %d: station missing", i)
		case v != strings.ToUpper(strings.TrimSpace(v)):
			p.errorf("row %d: station %q not canonical", i, v)
		}
	}
	return p
}

func validateUniqueness(t *table) *phase {
	p := &phase{name: "Duplicate rows"}
	seen := make(map[string]int, len(t.rows))
	for i, row := range t.rows {
		key := strings.Join(row, "\x1f")
		if first, dup := seen[key]; dup {
			p.errorf("row %d duplicates row %d", i, first)
			continue
		}
		seen[key] = i
	}
	return p
}

func validateSourceParity(t *table, dataDir string) *phase {
	p := &phase{name: "Source parity"}

	logger := observability.DiscardLogger()
	metrics := observability.NewMetrics()
	a := ingest.NewAssembler(ingest.NewLoader(logger), logger, metrics, true)
	unified, _, err := a.Assemble(context.Background(), dataDir)
	if err != nil {
		p.errorf("assemble %s: %v", dataDir, err)
		return p
	}
	normalized, _, err := normalize.NewNormalizer(logger, metrics, normalize.DateErrorsRaise).Normalize(unified)
	if err != nil {
		p.errorf("normalize %s: %v", dataDir, err)
		return p
	}

	if normalized.NumRows() != len(t.rows) {
		p.errorf("row count: file has %d, source normalizes to %d", len(t.rows), normalized.NumRows())
	}

	want := make(map[string]int)
	for _, station := range analysis.Stations(normalized) {
		want[station] = analysis.FilterStation(normalized, station).NumRows()
	}
	got := make(map[string]int)
	for _, row := range t.rows {
		if v, ok := t.get(row, domain.StationColumn); ok {
			got[v]++
		}
	}
	for _, station := range slices.Sorted(maps.Keys(want)) {
		if got[station] != want[station] {
			p.errorf("station %s: file has %d rows, source has %d", station, got[station], want[station])
		}
	}
	for _, station := range slices.Sorted(maps.Keys(got)) {
		if _, ok := want[station]; !ok {
			p.errorf("station %s: %d rows not present in source", station, got[station])
		}
	}
	return p
}
