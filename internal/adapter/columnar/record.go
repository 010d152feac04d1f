// Package columnar writes the normalized dataset as Arrow IPC or Parquet.
// Numbers map to float64, times to UTC millisecond timestamps, and text to
// utf8; missing cells are nulls.
package columnar

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// Schema returns the Arrow schema for f.
func Schema(f *frame.Frame) *arrow.Schema {
	series := f.Series()
	fields := make([]arrow.Field, len(series))
	for i, s := range series {
		fields[i] = arrow.Field{Name: s.Name(), Type: arrowType(s.Kind()), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k frame.Kind) arrow.DataType {
	switch k {
	case frame.KindNumber:
		return arrow.PrimitiveTypes.Float64
	case frame.KindTime:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

// Record converts f into a single Arrow record. The caller releases it.
func Record(mem memory.Allocator, f *frame.Frame) (arrow.Record, error) {
	schema := Schema(f)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for c, s := range f.Series() {
		if err := appendSeries(b.Field(c), s); err != nil {
			return nil, fmt.Errorf("column %s: %w", s.Name(), err)
		}
	}
	return b.NewRecord(), nil
}

func appendSeries(fb array.Builder, s *frame.Series) error {
	fb.Reserve(s.Len())
	switch b := fb.(type) {
	case *array.Float64Builder:
		for i := range s.Len() {
			if v, ok := s.Float(i); ok {
				b.Append(v)
			} else {
				b.AppendNull()
			}
		}
	case *array.TimestampBuilder:
		for i := range s.Len() {
			if t, ok := s.Time(i); ok {
				b.Append(arrow.Timestamp(t.UnixMilli()))
			} else {
				b.AppendNull()
			}
		}
	case *array.StringBuilder:
		for i := range s.Len() {
			if s.IsMissing(i) {
				b.AppendNull()
			} else {
				b.Append(s.Text(i))
			}
		}
	default:
		return fmt.Errorf("unsupported builder %T", fb)
	}
	return nil
}
