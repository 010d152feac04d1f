package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// Source describes one loaded export.
type Source struct {
	Path       string `json:"path"`
	Station    string `json:"station,omitempty"`
	HasStation bool   `json:"has_station"`
	HeaderLine int    `json:"header_line"`
	Rows       int    `json:"rows"`
	Columns    int    `json:"columns"`
}

// Loader parses single station exports.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load parses the export at path into a frame with one column per header
// cell plus a station column. Numeric columns are detected opportunistically;
// anything else stays text. Every failure is a *domain.FileError.
func (l *Loader) Load(path string) (*frame.Frame, Source, error) {
	src := Source{Path: path}

	headerLine, err := LocateHeader(path)
	if err != nil {
		return nil, src, &domain.FileError{Path: path, Err: err}
	}
	src.HeaderLine = headerLine

	table, err := readTable(path, headerLine)
	if err != nil {
		return nil, src, &domain.FileError{Path: path, Err: err}
	}

	station, ok, err := ExtractStationName(path)
	if err != nil {
		return nil, src, &domain.FileError{Path: path, Err: err}
	}
	if !ok {
		l.logger.Debug("station name absent, rows left untagged", "path", path)
	}

	stationCells := make([]string, table.NumRows())
	if ok {
		for i := range stationCells {
			stationCells[i] = station
		}
	}
	table, err = table.With(frame.NewTextSeries(domain.StationColumn, stationCells))
	if err != nil {
		return nil, src, &domain.FileError{Path: path, Err: err}
	}

	src.Station = station
	src.HasStation = ok
	src.Rows = table.NumRows()
	src.Columns = table.NumColumns()

	l.logger.Debug("station export loaded",
		"path", path,
		"station", station,
		"header_line", headerLine,
		"rows", src.Rows,
		"columns", src.Columns,
	)
	return table, src, nil
}

// readTable parses path as comma-delimited data whose header is on line
// headerLine. Short rows are padded with missing cells.
func readTable(path string, headerLine int) (*frame.Frame, error) {
	//nolint:gosec // G304: path comes from directory discovery or the caller.
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	if err := skipLines(br, headerLine); err != nil {
		return nil, err
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headerCells, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := domain.NormalizeHeader(headerCells)
	columns := make([][]string, len(names))

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse table: %w", err)
		}
		if blankRecord(rec) {
			continue
		}
		if extra := trailingCells(rec, len(names)); extra != "" {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("parse table: line %d: %d fields, header has %d",
				headerLine+line, len(rec), len(names))
		}
		for c := range names {
			v := ""
			if c < len(rec) {
				v = rec[c]
			}
			columns[c] = append(columns[c], v)
		}
	}

	series := make([]*frame.Series, len(names))
	for c, name := range names {
		cells := columns[c]
		if cells == nil {
			cells = []string{}
		}
		if name == domain.DateColumn {
			series[c] = frame.NewTextSeries(name, cells)
		} else {
			series[c] = frame.NewSeries(name, cells)
		}
	}
	return frame.New(series...)
}

// skipLines advances br past n lines.
func skipLines(br *bufio.Reader, n int) error {
	for i := 0; i < n; i++ {
		for {
			_, err := br.ReadSlice('\n')
			if err == nil {
				break
			}
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}
			return fmt.Errorf("skip preamble line %d: %w", i, err)
		}
	}
	return nil
}

// blankRecord reports whether every cell of rec is empty or whitespace.
func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// trailingCells returns the non-blank content of rec beyond the first width
// cells. Trailing empty cells from a dangling delimiter are tolerated.
func trailingCells(rec []string, width int) string {
	if len(rec) <= width {
		return ""
	}
	return strings.TrimSpace(strings.Join(rec[width:], ""))
}
