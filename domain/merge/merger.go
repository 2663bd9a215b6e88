// Package merge joins the population and case tables on canonical country
// name. The join is inner: rows without a partner on the other side are
// dropped from the output but surfaced through the unmatched sets so callers
// can report merge coverage.
package merge

import (
	"fmt"
	"sort"

	"covidetl/domain/core"
	"covidetl/domain/normalize"
	"covidetl/domain/table"
)

// MergedRow is one country matched across both datasets. Population is
// always positive; rows that would violate that are excluded during the
// merge, never zero-divided later.
type MergedRow struct {
	Key          normalize.CanonicalKey
	DisplayName  string
	Population   int64
	Cases        int64
	CasesPer100k float64 // derived later by percapita
}

// Input pairs a loaded table with its resolved key and value columns.
type Input struct {
	Table       *table.Table
	KeyColumn   string
	ValueColumn string
}

// Result carries the merged rows plus the data-quality accounting the
// caller reports alongside them.
type Result struct {
	Rows                []MergedRow
	UnmatchedPopulation []normalize.CanonicalKey // population keys never probed
	UnmatchedCases      []normalize.CanonicalKey // case keys with no population match
	DuplicateKeys       int                      // last-write-wins collisions, both sides
	SkippedPopulation   int                      // population rows dropped for invalid name or value
	SkippedCases        int                      // cases rows dropped for invalid name or value
	Warnings            []string
}

// Coverage returns merged and total counts for the cases side, e.g. for a
// "merged 187/195 countries" line. Skipped rows count toward the total.
func (r *Result) Coverage() (merged, total int) {
	return len(r.Rows), len(r.Rows) + len(r.UnmatchedCases) + r.SkippedCases
}

type popEntry struct {
	display    string
	population int64
	probed     bool
}

// Merge joins the two tables on canonical country name. Duplicate keys on
// either side resolve deterministically by row order (last occurrence wins)
// and are logged as warnings, not errors. An empty result is fatal: it
// signals a total key mismatch, usually wrong columns.
func Merge(population, cases Input, n *normalize.Normalizer) (*Result, error) {
	res := &Result{}

	// Pass 1: population table into a key -> entry map.
	popIndex := make(map[normalize.CanonicalKey]*popEntry)
	for i, row := range population.Table.Rows {
		key, display, err := n.Canonical(row[population.KeyColumn])
		if err != nil {
			res.skipPopulation("population row %d: %v", i, err)
			continue
		}
		value, ok := table.NumericCell(row[population.ValueColumn])
		if !ok || value <= 0 {
			res.skipPopulation("population row %d (%s): population %q is not a positive number", i, display, row[population.ValueColumn])
			continue
		}
		if _, exists := popIndex[key]; exists {
			res.DuplicateKeys++
			res.warn("duplicate population key %q, keeping last occurrence", key)
		}
		popIndex[key] = &popEntry{display: display, population: int64(value)}
	}

	// Pass 2: cases table probes the population index.
	merged := make([]MergedRow, 0, len(cases.Table.Rows))
	mergedIdx := make(map[normalize.CanonicalKey]int)
	for i, row := range cases.Table.Rows {
		key, display, err := n.Canonical(row[cases.KeyColumn])
		if err != nil {
			res.skipCases("cases row %d: %v", i, err)
			continue
		}
		value, ok := table.NumericCell(row[cases.ValueColumn])
		if !ok || value < 0 {
			res.skipCases("cases row %d (%s): case count %q is not a non-negative number", i, display, row[cases.ValueColumn])
			continue
		}
		entry, hit := popIndex[key]
		if !hit {
			res.UnmatchedCases = append(res.UnmatchedCases, key)
			continue
		}
		entry.probed = true

		mrow := MergedRow{
			Key:         key,
			DisplayName: entry.display,
			Population:  entry.population,
			Cases:       int64(value),
		}
		if at, exists := mergedIdx[key]; exists {
			res.DuplicateKeys++
			res.warn("duplicate cases key %q, keeping last occurrence", key)
			merged[at] = mrow
			continue
		}
		mergedIdx[key] = len(merged)
		merged = append(merged, mrow)
	}

	// Population keys never probed are the unmatched population set.
	for key, entry := range popIndex {
		if !entry.probed {
			res.UnmatchedPopulation = append(res.UnmatchedPopulation, key)
		}
	}
	sort.Slice(res.UnmatchedPopulation, func(i, j int) bool {
		return res.UnmatchedPopulation[i] < res.UnmatchedPopulation[j]
	})

	res.Rows = merged
	if len(merged) == 0 {
		return res, core.NewEmptyMergeError(len(res.UnmatchedPopulation), len(res.UnmatchedCases))
	}
	return res, nil
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) skipPopulation(format string, args ...any) {
	r.SkippedPopulation++
	r.warn(format, args...)
}

func (r *Result) skipCases(format string, args ...any) {
	r.SkippedCases++
	r.warn(format, args...)
}
