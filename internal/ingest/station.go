package ingest

import (
	"strings"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
)

// ExtractStationName scans path for the first line starting with
// domain.StationLabel and returns the text after it, trimmed and upper-cased.
// ok is false when no line carries the label; err is reserved for I/O failures.
func ExtractStationName(path string) (name string, ok bool, err error) {
	err = scanLines(path, func(_ int, line string) bool {
		line = strings.TrimLeft(strings.TrimPrefix(line, bom), " \t")
		rest, found := strings.CutPrefix(line, domain.StationLabel)
		if !found {
			return true
		}
		name, ok = canonicalStationName(rest), true
		return false
	})
	if err != nil {
		return "", false, err
	}
	return name, ok, nil
}

// canonicalStationName strips whitespace, the trailing delimiters and quotes
// spreadsheet tools leave behind, and upper-cases the result.
func canonicalStationName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ", \t")
	s = strings.Trim(s, `"`)
	return strings.ToUpper(strings.TrimSpace(s))
}
