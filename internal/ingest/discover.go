package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
)

const csvSuffix = ".csv"

// Discover returns every regular file under root, at any depth, whose name
// ends in ".csv". Callers must not rely on the order. It returns an error
// wrapping domain.ErrDiscoveryEmpty when nothing matches.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s: not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), csvSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w under %s", domain.ErrDiscoveryEmpty, root)
	}
	return paths, nil
}
