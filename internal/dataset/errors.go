package dataset

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for input files whose extension is not
// .csv, .json, .jsonl or .ndjson.
var ErrUnsupportedFormat = errors.New("unsupported input format (use .csv, .json, .jsonl or .ndjson)")

// RowError describes a record that could not be parsed.
type RowError struct {
	Path   string
	Line   int // 1-based; the CSV header is line 1
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %q: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
