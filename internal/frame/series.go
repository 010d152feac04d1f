package frame

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the storage type of a Series.
type Kind uint8

const (
	KindText Kind = iota
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "text"
	}
}

// Series is one named column. A cell is either missing or holds a value of
// the series kind. Text and number series keep the source text of every
// present cell so a kind change never loses what was read.
type Series struct {
	name  string
	kind  Kind
	raw   []string
	nums  []float64
	times []time.Time
	valid []bool
}

// NewSeries builds a column from source text. Empty cells are missing. The
// column is numeric only when every present cell parses as a float;
// otherwise it stays text.
func NewSeries(name string, raw []string) *Series {
	s := &Series{name: name, kind: KindText, raw: raw, valid: make([]bool, len(raw))}
	nums := make([]float64, len(raw))
	numeric := true
	for i, v := range raw {
		if v == "" {
			continue
		}
		s.valid[i] = true
		if !numeric {
			continue
		}
		if !numericSpelling(v) {
			numeric = false
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			continue
		}
		nums[i] = f
	}
	if numeric {
		s.kind = KindNumber
		s.nums = nums
	}
	return s
}

// numericSpelling reports whether v is written as a decimal number. It
// rejects the NaN, Inf and hexadecimal forms ParseFloat would accept.
func numericSpelling(v string) bool {
	d := strings.TrimLeft(v, "+-")
	if len(v)-len(d) > 1 || d == "" {
		return false
	}
	if c := d[0]; c != '.' && (c < '0' || c > '9') {
		return false
	}
	return !strings.ContainsAny(d, "xX_")
}

// NewTextSeries builds a text column without numeric coercion. Empty cells are missing.
func NewTextSeries(name string, raw []string) *Series {
	s := &Series{name: name, kind: KindText, raw: raw, valid: make([]bool, len(raw))}
	for i, v := range raw {
		s.valid[i] = v != ""
	}
	return s
}

// NewTimeSeries builds a temporal column. valid marks which cells are present.
func NewTimeSeries(name string, times []time.Time, valid []bool) *Series {
	return &Series{name: name, kind: KindTime, times: times, valid: valid}
}

// MissingSeries builds a text column of n missing cells.
func MissingSeries(name string, n int) *Series {
	return &Series{name: name, kind: KindText, raw: make([]string, n), valid: make([]bool, n)}
}

func (s *Series) Name() string { return s.name }
func (s *Series) Kind() Kind   { return s.kind }
func (s *Series) Len() int     { return len(s.valid) }

// IsMissing reports whether cell i holds the missing marker.
func (s *Series) IsMissing(i int) bool { return !s.valid[i] }

// MissingCount returns the number of missing cells.
func (s *Series) MissingCount() int {
	n := 0
	for _, ok := range s.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Text returns cell i as text: the source text for text and number columns,
// RFC 3339 for time columns, and "" when missing.
func (s *Series) Text(i int) string {
	if !s.valid[i] {
		return ""
	}
	if s.kind == KindTime {
		return s.times[i].Format(time.RFC3339)
	}
	return s.raw[i]
}

// Float returns cell i of a number column.
func (s *Series) Float(i int) (float64, bool) {
	if s.kind != KindNumber || !s.valid[i] {
		return 0, false
	}
	return s.nums[i], true
}

// Time returns cell i of a time column.
func (s *Series) Time(i int) (time.Time, bool) {
	if s.kind != KindTime || !s.valid[i] {
		return time.Time{}, false
	}
	return s.times[i], true
}

// Rename returns a copy of s sharing its storage under a new name.
func (s *Series) Rename(name string) *Series {
	c := *s
	c.name = name
	return &c
}

// take returns a new series holding the cells at idx, in that order.
func (s *Series) take(idx []int) *Series {
	out := &Series{name: s.name, kind: s.kind, valid: make([]bool, len(idx))}
	if s.raw != nil {
		out.raw = make([]string, len(idx))
	}
	switch s.kind {
	case KindNumber:
		out.nums = make([]float64, len(idx))
	case KindTime:
		out.times = make([]time.Time, len(idx))
	}
	for j, i := range idx {
		out.valid[j] = s.valid[i]
		if out.raw != nil {
			out.raw[j] = s.raw[i]
		}
		switch s.kind {
		case KindNumber:
			out.nums[j] = s.nums[i]
		case KindTime:
			out.times[j] = s.times[i]
		}
	}
	return out
}

// equal reports whether cells i and j hold the same value. Missing equals
// missing, NaN equals NaN, and times compare by instant.
func (s *Series) equal(i, j int) bool {
	if s.valid[i] != s.valid[j] {
		return false
	}
	if !s.valid[i] {
		return true
	}
	switch s.kind {
	case KindNumber:
		a, b := s.nums[i], s.nums[j]
		return a == b || (a != a && b != b)
	case KindTime:
		return s.times[i].Equal(s.times[j])
	default:
		return s.raw[i] == s.raw[j]
	}
}
