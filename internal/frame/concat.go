package frame

import "time"

// Concat stacks frames vertically. The result schema is the union of the
// input schemas in order of first appearance and is fixed before any row is
// copied. Rows from a frame lacking a column get the missing marker there.
// A column keeps its kind when every input agrees and falls back to text
// otherwise. The result is indexed densely from zero.
func Concat(frames ...*Frame) *Frame {
	var (
		names []string
		kinds = make(map[string]Kind)
		total int
	)
	for _, f := range frames {
		total += f.rows
		for _, s := range f.series {
			k, seen := kinds[s.name]
			switch {
			case !seen:
				names = append(names, s.name)
				kinds[s.name] = s.kind
			case k != s.kind:
				kinds[s.name] = KindText
			}
		}
	}

	series := make([]*Series, len(names))
	for c, name := range names {
		series[c] = concatColumn(name, kinds[name], total, frames)
	}
	out, _ := New(series...) // names are unique and lengths equal by construction
	out.rows = total
	return out
}

func concatColumn(name string, kind Kind, total int, frames []*Frame) *Series {
	out := &Series{name: name, kind: kind, valid: make([]bool, total)}
	switch kind {
	case KindNumber:
		out.raw = make([]string, total)
		out.nums = make([]float64, total)
	case KindTime:
		out.times = make([]time.Time, total)
	default:
		out.raw = make([]string, total)
	}

	offset := 0
	for _, f := range frames {
		s, ok := f.Column(name)
		if !ok {
			offset += f.rows
			continue
		}
		copy(out.valid[offset:], s.valid)
		switch {
		case kind == KindNumber:
			copy(out.raw[offset:], s.raw)
			copy(out.nums[offset:], s.nums)
		case kind == KindTime:
			copy(out.times[offset:], s.times)
		case s.kind == KindTime:
			for i := range s.valid {
				out.raw[offset+i] = s.Text(i)
			}
		default:
			copy(out.raw[offset:], s.raw)
		}
		offset += f.rows
	}
	return out
}
