package ingest

import (
	"fmt"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
)

// LocateHeader returns the 0-based line index of the first line of path that
// contains both header tokens, case-insensitively. It returns an error
// wrapping domain.ErrHeaderNotFound when the file ends without such a line.
func LocateHeader(path string) (int, error) {
	found := -1
	err := scanLines(path, func(n int, line string) bool {
		if domain.IsHeaderLine(line) {
			found = n
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if found < 0 {
		return 0, fmt.Errorf("%w: no line contains both %q and %q",
			domain.ErrHeaderNotFound, domain.HeaderDateToken, domain.HeaderWindToken)
	}
	return found, nil
}
