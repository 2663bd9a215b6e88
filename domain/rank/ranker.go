// Package rank orders countries by the per-capita metric and selects the
// top-N subset for reporting and visualization.
package rank

import (
	"fmt"
	"sort"

	"covidetl/domain/core"
	"covidetl/domain/merge"
)

// RankedResult is the terminal artifact of a pipeline run: rows sorted
// descending by CasesPer100k and truncated to the requested top-N.
type RankedResult struct {
	Rows     []merge.MergedRow
	TopN     int  // effective top-N after clamping
	Clamped  bool // true when the request exceeded the available rows
	Warnings []string
}

// Rank sorts descending by CasesPer100k with deterministic tie-breaking:
// higher absolute case count first, then canonical country name ascending.
// topN must be >= 1; a request beyond the available rows clamps with a
// warning instead of failing.
func Rank(rows []merge.MergedRow, topN int) (*RankedResult, error) {
	if topN <= 0 {
		return nil, core.NewInvalidTopNError(topN)
	}

	sorted := make([]merge.MergedRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.CasesPer100k != b.CasesPer100k {
			return a.CasesPer100k > b.CasesPer100k
		}
		if a.Cases != b.Cases {
			return a.Cases > b.Cases
		}
		return a.Key < b.Key
	})

	res := &RankedResult{TopN: topN}
	if topN > len(sorted) {
		res.TopN = len(sorted)
		res.Clamped = true
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("top-n %d exceeds available rows, clamped to %d", topN, len(sorted)))
	}
	res.Rows = sorted[:res.TopN]
	return res, nil
}
