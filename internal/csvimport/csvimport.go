// Package csvimport normalizes bulk-upload CSV files into typed rows
// with per-row error reporting.
//
// Parsing is a naive comma split with no quoted-field support, matching
// the format the admin templates produce. Fields containing commas are
// therefore not representable; see DESIGN.md before changing this.
package csvimport

import (
	"fmt"
	"strings"
)

// RowError reports a rejected data row. Line is the 1-based line number
// in the source file, counting the header as line 1.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Row pairs a parsed value with its source line number.
type Row[T any] struct {
	Line  int
	Value T
}

// Result partitions an import into accepted and rejected rows.
type Result[T any] struct {
	Valid   []Row[T]
	Invalid []RowError
}

// Parse validates the header line against required column names, then
// builds a typed value from each data row. A missing required header
// fails the whole file with a single error and no parsed rows. Row
// failures never abort the run; every line is evaluated and reported.
func Parse[T any](header string, dataLines []string, required []string, build func(fields map[string]string) (T, error)) (Result[T], error) {
	cols := splitRow(header)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[strings.TrimSpace(c)] = i
	}
	for _, want := range required {
		if _, ok := index[want]; !ok {
			return Result[T]{}, fmt.Errorf("missing required column %q", want)
		}
	}

	var res Result[T]
	for i, line := range dataLines {
		lineNo := i + 2 // header is line 1
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := splitRow(line)
		fields := make(map[string]string, len(index))
		for name, col := range index {
			if col < len(values) {
				fields[name] = strings.TrimSpace(values[col])
			} else {
				fields[name] = ""
			}
		}
		value, err := build(fields)
		if err != nil {
			res.Invalid = append(res.Invalid, RowError{Line: lineNo, Reason: err.Error()})
			continue
		}
		res.Valid = append(res.Valid, Row[T]{Line: lineNo, Value: value})
	}
	return res, nil
}

// SplitLines breaks a raw file body into header and data lines,
// tolerating CRLF endings and a trailing newline.
func SplitLines(body string) (header string, dataLines []string) {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], lines[1:]
}

func splitRow(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r"), ",")
}
