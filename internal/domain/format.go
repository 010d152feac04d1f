package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// HeaderDateToken and HeaderWindToken must both occur on the header line.
	HeaderDateToken = "date"
	HeaderWindToken = "wdsp"

	// StationLabel prefixes the preamble line carrying the station name.
	StationLabel = "Station Name:"

	// TimestampLayout is the only layout accepted for the date column.
	TimestampLayout = "02-Jan-2006 15:04"
)

// IsHeaderLine reports whether line contains both header tokens.
func IsHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, HeaderDateToken) && strings.Contains(lower, HeaderWindToken)
}

// ParseTimestamp parses s with TimestampLayout. Month abbreviations match in
// any case, so "13-aug-2003 01:00" and "13-Aug-2003 01:00" are equivalent.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return t, nil
}

// FormatTimestamp renders t the way station exports write it, with a
// lower-case month abbreviation.
func FormatTimestamp(t time.Time) string {
	return strings.ToLower(t.UTC().Format(TimestampLayout))
}
