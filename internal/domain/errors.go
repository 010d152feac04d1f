package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrHeaderNotFound means no line carried both header tokens.
	ErrHeaderNotFound = errors.New("header row not found")

	// ErrStationNameAbsent means no preamble line starts with StationLabel.
	// Extraction reports absence without an error; this sentinel is for
	// callers that choose to treat absence as fatal.
	ErrStationNameAbsent = errors.New("station name absent")

	// ErrMalformedFile wraps any failure to load one export.
	ErrMalformedFile = errors.New("malformed file")

	// ErrDiscoveryEmpty means the root directory held no CSV exports.
	ErrDiscoveryEmpty = errors.New("no csv files discovered")

	// ErrMalformedTimestamp means a date cell did not match TimestampLayout.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)

// FileError ties a load failure to the export it came from. It matches both
// ErrMalformedFile and the underlying cause under errors.Is.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedFile, e.Path, e.Err)
}

func (e *FileError) Unwrap() []error {
	return []error{ErrMalformedFile, e.Err}
}
