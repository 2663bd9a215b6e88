// Package table defines the schema-free tabular representation the pipeline
// operates on. Loaders produce a Table; nothing downstream of the merge keeps
// a reference to one.
package table

import (
	"strconv"
	"strings"
)

// Row represents one data row as string key-value pairs keyed by header
type Row map[string]string

// Table represents a loaded tabular dataset with no guaranteed schema
type Table struct {
	Name    string   // Source label for logs and warnings
	Headers []string // Column headers, in file order
	Rows    []Row    // Data rows
}

// Column collects the values of one column in row order. Missing cells are
// returned as empty strings so positions line up with Rows.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// HasHeader reports whether the table carries the given header.
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// NumericCell parses a cell as a float, tolerating thousands separators and
// surrounding whitespace ("59,037,474" style values are common in population
// exports).
func NumericCell(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
