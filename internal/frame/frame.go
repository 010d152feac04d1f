// Package frame is the in-memory table behind the unified and normalized
// datasets: an ordered set of equal-length named columns with a dense,
// zero-based row index.
package frame

import (
	"fmt"
	"iter"
	"time"
)

// Frame is an immutable table. Operations return new frames and may share
// column storage with their input.
type Frame struct {
	series []*Series
	byName map[string]int
	rows   int
}

// New builds a frame from series of equal length with unique names.
func New(series ...*Series) (*Frame, error) {
	f := &Frame{series: series, byName: make(map[string]int, len(series))}
	for i, s := range series {
		if _, dup := f.byName[s.name]; dup {
			return nil, fmt.Errorf("duplicate column %q", s.name)
		}
		if i == 0 {
			f.rows = s.Len()
		} else if s.Len() != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", s.name, s.Len(), f.rows)
		}
		f.byName[s.name] = i
	}
	return f, nil
}

func (f *Frame) NumRows() int    { return f.rows }
func (f *Frame) NumColumns() int { return len(f.series) }

// Columns returns the column names in schema order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.series))
	for i, s := range f.series {
		names[i] = s.name
	}
	return names
}

// Column looks up a column by name.
func (f *Frame) Column(name string) (*Series, bool) {
	i, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return f.series[i], true
}

// Series returns the columns in schema order.
func (f *Frame) Series() []*Series {
	out := make([]*Series, len(f.series))
	copy(out, f.series)
	return out
}

// With returns a frame where s replaces the column of the same name, or is
// appended when no such column exists.
func (f *Frame) With(s *Series) (*Frame, error) {
	series := f.Series()
	if i, ok := f.byName[s.name]; ok {
		series[i] = s
	} else {
		series = append(series, s)
	}
	return New(series...)
}

// Take returns the rows at idx, in that order, re-indexed from zero.
func (f *Frame) Take(idx []int) *Frame {
	series := make([]*Series, len(f.series))
	for i, s := range f.series {
		series[i] = s.take(idx)
	}
	return &Frame{series: series, byName: f.byName, rows: len(idx)}
}

// Filter returns the rows for which keep is true, in original order.
func (f *Frame) Filter(keep func(Row) bool) *Frame {
	var idx []int
	for i, r := range f.Rows() {
		if keep(r) {
			idx = append(idx, i)
		}
	}
	return f.Take(idx)
}

// Rows iterates over the frame in index order.
func (f *Frame) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i := 0; i < f.rows; i++ {
			if !yield(i, Row{frame: f, index: i}) {
				return
			}
		}
	}
}

// Row is a read-only view of one row.
type Row struct {
	frame *Frame
	index int
}

// Index returns the row's position in its frame.
func (r Row) Index() int { return r.index }

// IsMissing reports whether column col is missing in this row. Absent
// columns count as missing.
func (r Row) IsMissing(col string) bool {
	s, ok := r.frame.Column(col)
	return !ok || s.IsMissing(r.index)
}

// Text returns column col as text, or "" when absent or missing.
func (r Row) Text(col string) string {
	s, ok := r.frame.Column(col)
	if !ok {
		return ""
	}
	return s.Text(r.index)
}

// Float returns column col when it is a present number.
func (r Row) Float(col string) (float64, bool) {
	s, ok := r.frame.Column(col)
	if !ok {
		return 0, false
	}
	return s.Float(r.index)
}

// Time returns column col when it is a present time.
func (r Row) Time(col string) (time.Time, bool) {
	s, ok := r.frame.Column(col)
	if !ok {
		return time.Time{}, false
	}
	return s.Time(r.index)
}
