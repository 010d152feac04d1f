package columnar

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"github.com/couchcryptid/station-wind-etl/internal/adapter/atomicfile"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// ArrowSink writes a frame as an Arrow IPC file. It implements pipeline.Sink.
type ArrowSink struct {
	path   string
	mem    memory.Allocator
	logger *slog.Logger
}

// NewArrowSink creates an ArrowSink writing to path.
func NewArrowSink(path string, logger *slog.Logger) *ArrowSink {
	return &ArrowSink{path: path, mem: memory.NewGoAllocator(), logger: logger}
}

func (s *ArrowSink) Name() string { return "arrow" }

func (s *ArrowSink) Write(ctx context.Context, f *frame.Frame) error {
	err := writeRecord(ctx, s.path, s.mem, f, func(w io.Writer, rec arrow.Record) error {
		fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(s.mem))
		if err != nil {
			return err
		}
		if err := fw.Write(rec); err != nil {
			_ = fw.Close()
			return err
		}
		return fw.Close()
	})
	if err != nil {
		return fmt.Errorf("write arrow %s: %w", s.path, err)
	}
	s.logger.Info("normalized dataset written", "path", s.path, "format", "arrow", "rows", f.NumRows())
	return nil
}

// ParquetSink writes a frame as a Snappy-compressed Parquet file. It
// implements pipeline.Sink.
type ParquetSink struct {
	path   string
	mem    memory.Allocator
	logger *slog.Logger
}

// NewParquetSink creates a ParquetSink writing to path.
func NewParquetSink(path string, logger *slog.Logger) *ParquetSink {
	return &ParquetSink{path: path, mem: memory.NewGoAllocator(), logger: logger}
}

func (s *ParquetSink) Name() string { return "parquet" }

func (s *ParquetSink) Write(ctx context.Context, f *frame.Frame) error {
	err := writeRecord(ctx, s.path, s.mem, f, func(w io.Writer, rec arrow.Record) error {
		props := parquet.NewWriterProperties(
			parquet.WithCompression(compress.Codecs.Snappy),
			parquet.WithAllocator(s.mem),
		)
		fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, pqarrow.DefaultWriterProps())
		if err != nil {
			return err
		}
		if err := fw.Write(rec); err != nil {
			_ = fw.Close()
			return err
		}
		return fw.Close()
	})
	if err != nil {
		return fmt.Errorf("write parquet %s: %w", s.path, err)
	}
	s.logger.Info("normalized dataset written", "path", s.path, "format", "parquet", "rows", f.NumRows())
	return nil
}

func writeRecord(ctx context.Context, path string, mem memory.Allocator, f *frame.Frame, encode func(io.Writer, arrow.Record) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := Record(mem, f)
	if err != nil {
		return err
	}
	defer rec.Release()

	return atomicfile.Write(path, func(w io.Writer) error {
		return encode(w, rec)
	})
}
