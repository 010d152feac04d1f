package domain

import (
	"slices"
	"strconv"
	"strings"
)

const (
	DateColumn    = "date"
	StationColumn = "station"

	// IndicatorToken is the source name of every quality-indicator column.
	IndicatorToken = "ind"
)

// CoreColumns are the measurements every station export carries.
var CoreColumns = []string{"rain", "temp", "wetb", "dewpt", "vappr", "rhum", "msl", "wdsp", "wddir"}

// ExtendedColumns are present only in some exports.
var ExtendedColumns = []string{"ww", "w", "sun", "vis", "clht", "clamt"}

// IsCoreColumn reports whether name is a core measurement.
func IsCoreColumn(name string) bool { return slices.Contains(CoreColumns, name) }

// IsExtendedColumn reports whether name is an extended measurement.
func IsExtendedColumn(name string) bool { return slices.Contains(ExtendedColumns, name) }

// IndicatorColumn returns the column name given to the quality indicator of measure.
func IndicatorColumn(measure string) string {
	return "i" + measure
}

// NormalizeHeader trims and lower-cases header cells, names each "ind" column
// after the measurement that follows it, labels empty cells by position, and
// suffixes any remaining duplicates with ".1", ".2", ... in order of appearance.
func NormalizeHeader(cells []string) []string {
	names := make([]string, len(cells))
	for i, c := range cells {
		c = strings.TrimPrefix(c, "\ufeff")
		names[i] = strings.ToLower(strings.TrimSpace(c))
	}

	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, name := range names {
		switch {
		case name == IndicatorToken && i+1 < len(names) && names[i+1] != "" && names[i+1] != IndicatorToken:
			name = IndicatorColumn(names[i+1])
		case name == "":
			name = "column" + strconv.Itoa(i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}
