// Package analysis reads the unified and normalized datasets: missing-value
// inspection, station subsets, typed observations, and per-station wind
// summaries.
package analysis

import (
	"strings"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// ColumnMissing is the missing-cell count of one column.
type ColumnMissing struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
	Rows    int    `json:"rows"`
}

// MissingCounts returns the missing-cell count of every column in schema
// order. Run it before normalization: afterwards it only reflects what the
// source never reported, not what was blank.
func MissingCounts(f *frame.Frame) []ColumnMissing {
	out := make([]ColumnMissing, 0, f.NumColumns())
	for _, s := range f.Series() {
		out = append(out, ColumnMissing{Column: s.Name(), Missing: s.MissingCount(), Rows: s.Len()})
	}
	return out
}

// FilterStation returns the rows of f recorded at station, in their original
// order. The name is compared in the canonical upper-case form.
func FilterStation(f *frame.Frame, station string) *frame.Frame {
	want := strings.ToUpper(strings.TrimSpace(station))
	return f.Filter(func(r frame.Row) bool {
		return !r.IsMissing(domain.StationColumn) && r.Text(domain.StationColumn) == want
	})
}

// Stations returns the distinct station names in f in order of first
// appearance. Rows without a station are skipped.
func Stations(f *frame.Frame) []string {
	s, ok := f.Column(domain.StationColumn)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for i := range s.Len() {
		if s.IsMissing(i) {
			continue
		}
		name := s.Text(i)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Observations returns a typed view of every row of a normalized frame.
func Observations(f *frame.Frame) []domain.Observation {
	out := make([]domain.Observation, 0, f.NumRows())
	for _, r := range f.Rows() {
		obs := domain.Observation{
			Station:       r.Text(domain.StationColumn),
			WindSpeed:     floatPtr(r, "wdsp"),
			WindDirection: floatPtr(r, "wddir"),
			Temperature:   floatPtr(r, "temp"),
			Pressure:      floatPtr(r, "msl"),
			Humidity:      floatPtr(r, "rhum"),
			Rain:          floatPtr(r, "rain"),
		}
		if t, ok := r.Time(domain.DateColumn); ok {
			obs.Date = t
		}
		out = append(out, obs)
	}
	return out
}

func floatPtr(r frame.Row, col string) *float64 {
	v, ok := r.Float(col)
	if !ok {
		return nil
	}
	return &v
}
