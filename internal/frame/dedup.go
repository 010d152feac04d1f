package frame

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// DropDuplicates removes rows identical to an earlier row across every
// column, keeping first occurrences in their original order. It returns the
// deduplicated frame and the number of rows removed. Rows are bucketed by an
// xxhash digest of their cells and confirmed by full comparison.
func (f *Frame) DropDuplicates() (*Frame, int) {
	first := make(map[uint64]int, f.rows)
	var collisions map[uint64][]int
	keep := make([]int, 0, f.rows)
	var buf []byte

	for i := 0; i < f.rows; i++ {
		buf = f.appendRowKey(buf[:0], i)
		sum := xxhash.Sum64(buf)

		j, seen := first[sum]
		if !seen {
			first[sum] = i
			keep = append(keep, i)
			continue
		}
		if f.rowsEqual(i, j) {
			continue
		}
		dup := false
		for _, k := range collisions[sum] {
			if f.rowsEqual(i, k) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		if collisions == nil {
			collisions = make(map[uint64][]int)
		}
		collisions[sum] = append(collisions[sum], i)
		keep = append(keep, i)
	}

	if len(keep) == f.rows {
		return f, 0
	}
	return f.Take(keep), f.rows - len(keep)
}

// DuplicateCount returns how many rows DropDuplicates would remove.
func (f *Frame) DuplicateCount() int {
	_, n := f.DropDuplicates()
	return n
}

func (f *Frame) rowsEqual(i, j int) bool {
	for _, s := range f.series {
		if !s.equal(i, j) {
			return false
		}
	}
	return true
}

// appendRowKey encodes row i so that equal rows (per Series.equal) always
// produce equal keys.
func (f *Frame) appendRowKey(buf []byte, i int) []byte {
	for _, s := range f.series {
		if !s.valid[i] {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, 1)
		switch s.kind {
		case KindNumber:
			v := s.nums[i]
			switch {
			case v != v:
				v = math.NaN()
			case v == 0:
				v = 0
			}
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		case KindTime:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(s.times[i].UnixNano()))
		default:
			buf = binary.AppendUvarint(buf, uint64(len(s.raw[i])))
			buf = append(buf, s.raw[i]...)
		}
	}
	return buf
}
