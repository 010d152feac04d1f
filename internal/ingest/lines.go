package ingest

import (
	"bufio"
	"fmt"
	"os"
)

const (
	maxLineBytes = 1 << 20
	bom          = "\ufeff"
)

// scanLines reads path one line at a time, calling visit with each 0-based
// line number and its text (line terminator removed) until visit returns
// false or the file ends. Only the current line is held in memory.
func scanLines(path string, visit func(n int, line string) bool) error {
	//nolint:gosec // G304: path comes from directory discovery or the caller.
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for n := 0; sc.Scan(); n++ {
		if !visit(n, sc.Text()) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}
