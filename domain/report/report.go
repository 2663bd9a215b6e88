// Package report assembles the run report: merge coverage, data-quality
// warnings, and the ranked outcome of one pipeline run.
package report

import (
	"fmt"
	"strings"
	"time"

	"covidetl/domain/core"
	"covidetl/domain/merge"
	"covidetl/domain/normalize"
	"covidetl/domain/percapita"
)

// RunReport is the non-fatal accounting of a pipeline run, reported
// alongside the ranked result rather than raised as errors.
type RunReport struct {
	RunID     core.ID
	StartedAt time.Time
	Duration  time.Duration

	PopulationFile string
	CasesFile      string
	PopulationRows int
	CasesRows      int

	MergedCountries     int
	CoverageTotal       int
	UnmatchedPopulation []normalize.CanonicalKey
	UnmatchedCases      []normalize.CanonicalKey
	DuplicateKeys       int
	SkippedPopulation   int
	SkippedCases        int
	SkippedZeroPop      int

	TopNRequested int
	TopNEffective int
	Summary       percapita.Summary
	Top           []merge.MergedRow

	Warnings []string
}

// CoverageLine formats the merge coverage for humans, e.g.
// "merged 187/195 countries".
func (r *RunReport) CoverageLine() string {
	return fmt.Sprintf("merged %d/%d countries", r.MergedCountries, r.CoverageTotal)
}

// Markdown renders the report as a Markdown document for the HTML report
// writer and for terminal output.
func (r *RunReport) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# COVID-19 cases per 100k: run report\n\n")
	fmt.Fprintf(&b, "- Run ID: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "- Population file: %s (%d rows)\n", r.PopulationFile, r.PopulationRows)
	fmt.Fprintf(&b, "- Cases file: %s (%d rows)\n\n", r.CasesFile, r.CasesRows)

	fmt.Fprintf(&b, "## Merge coverage\n\n")
	fmt.Fprintf(&b, "%s; %d unmatched population keys, %d unmatched case keys, "+
		"%d duplicate keys, %d skipped rows\n\n",
		r.CoverageLine(), len(r.UnmatchedPopulation), len(r.UnmatchedCases),
		r.DuplicateKeys, r.SkippedPopulation+r.SkippedCases+r.SkippedZeroPop)

	fmt.Fprintf(&b, "## Metric distribution\n\n")
	fmt.Fprintf(&b, "| countries | mean | median | p90 | max | skewness |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n\n",
		r.Summary.Count, r.Summary.Mean, r.Summary.Median, r.Summary.P90,
		r.Summary.Max, r.Summary.Skewness)

	fmt.Fprintf(&b, "## Top %d countries\n\n", r.TopNEffective)
	fmt.Fprintf(&b, "| rank | country | population | cases | cases per 100k |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for i, row := range r.Top {
		fmt.Fprintf(&b, "| %d | %s | %d | %d | %.2f |\n",
			i+1, row.DisplayName, row.Population, row.Cases, row.CasesPer100k)
	}
	b.WriteString("\n")

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "## Warnings\n\n")
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
		b.WriteString("\n")
	}

	return b.String()
}
