// Package percapita derives the cases-per-100k metric from merged rows.
package percapita

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"covidetl/domain/merge"
)

// per100k is the normalization base: case counts are expressed per 100,000
// inhabitants so countries of different sizes compare fairly.
const per100k = 100000.0

// Compute sets CasesPer100k on each row using floating-point division, no
// rounding (rounding belongs to presentation). Rows with population <= 0 are
// excluded rather than zero-divided; the count of exclusions is returned as
// the skip metric. The input slice is not modified.
func Compute(rows []merge.MergedRow) ([]merge.MergedRow, int) {
	out := make([]merge.MergedRow, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row.Population <= 0 {
			skipped++
			continue
		}
		row.CasesPer100k = float64(row.Cases) / float64(row.Population) * per100k
		out = append(out, row)
	}
	return out, skipped
}

// Summary describes the distribution of the computed metric across
// countries, for the run report.
type Summary struct {
	Count    int
	Mean     float64
	Median   float64
	P90      float64
	Max      float64
	Skewness float64
}

// Summarize computes distribution statistics over the CasesPer100k values.
// Rows must already have the metric set (i.e. come from Compute).
func Summarize(rows []merge.MergedRow) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.CasesPer100k
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	p90, _ := stats.Percentile(values, 90)
	max, _ := stats.Max(values)

	s := Summary{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		P90:    p90,
		Max:    max,
	}
	if len(values) >= 2 {
		s.Skewness = stat.Skew(values, nil)
	}
	return s
}
