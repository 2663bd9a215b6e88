// Package pipeline orchestrates one analysis run: load the two tables,
// resolve their columns, normalize country names, merge, derive the
// per-capita metric, and rank. The pipeline itself never prompts or prints;
// ambiguity is surfaced to a caller-supplied resolver.
package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"covidetl/domain/core"
	"covidetl/domain/merge"
	"covidetl/domain/normalize"
	"covidetl/domain/percapita"
	"covidetl/domain/rank"
	"covidetl/domain/report"
	"covidetl/domain/resolve"
	"covidetl/domain/table"
	"covidetl/internal"
	"covidetl/ports"
)

var logger = internal.DefaultLogger

// AmbiguityResolver decides a column when automatic resolution cannot. The
// CLI installs a stdin prompt; batch callers can consult configuration or
// just propagate the error by returning it unchanged.
type AmbiguityResolver func(err *resolve.AmbiguousColumnError) (string, error)

// Overrides pins columns per table, bypassing auto-detection. Empty fields
// mean auto-detect.
type Overrides struct {
	PopulationKey   string
	PopulationValue string
	CasesKey        string
	CasesValue      string
}

// Request describes one pipeline run.
type Request struct {
	PopulationFile string
	CasesFile      string
	TopN           int
	Overrides      Overrides
}

// Runner executes the merge-and-normalize pipeline.
type Runner struct {
	loader      ports.TableLoader
	resolver    *resolve.Resolver
	aliases     normalize.AliasTable
	onAmbiguity AmbiguityResolver
}

// NewRunner wires a pipeline. aliases must be fully built before Run is
// called; onAmbiguity may be nil, in which case ambiguity errors propagate.
func NewRunner(loader ports.TableLoader, aliases normalize.AliasTable, onAmbiguity AmbiguityResolver) *Runner {
	return &Runner{
		loader:      loader,
		resolver:    resolve.NewResolver(),
		aliases:     aliases,
		onAmbiguity: onAmbiguity,
	}
}

// Run executes the full pipeline and returns the ranked result together
// with the run report. Row-level anomalies are recovered and reported;
// structural ones (unresolvable columns, empty merge, bad top-n) abort.
func (r *Runner) Run(ctx context.Context, req Request) (*rank.RankedResult, *report.RunReport, error) {
	started := time.Now()
	rep := &report.RunReport{
		RunID:          core.NewID(),
		StartedAt:      started,
		PopulationFile: req.PopulationFile,
		CasesFile:      req.CasesFile,
		TopNRequested:  req.TopN,
	}

	// Both loads run concurrently and must complete before the merge.
	var population, cases *table.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := r.loader.Load(gctx, req.PopulationFile, "population")
		population = t
		return err
	})
	g.Go(func() error {
		t, err := r.loader.Load(gctx, req.CasesFile, "cases")
		cases = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	rep.PopulationRows = len(population.Rows)
	rep.CasesRows = len(cases.Rows)

	popInput, err := r.resolveColumns(population, req.Overrides.PopulationKey, req.Overrides.PopulationValue)
	if err != nil {
		return nil, nil, err
	}
	casesInput, err := r.resolveColumns(cases, req.Overrides.CasesKey, req.Overrides.CasesValue)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("[Pipeline] resolved population columns key=%q value=%q, cases columns key=%q value=%q",
		popInput.KeyColumn, popInput.ValueColumn, casesInput.KeyColumn, casesInput.ValueColumn)

	normalizer := normalize.NewNormalizer(r.aliases)
	merged, err := merge.Merge(popInput, casesInput, normalizer)
	if merged != nil {
		rep.MergedCountries, rep.CoverageTotal = merged.Coverage()
		rep.UnmatchedPopulation = merged.UnmatchedPopulation
		rep.UnmatchedCases = merged.UnmatchedCases
		rep.DuplicateKeys = merged.DuplicateKeys
		rep.SkippedPopulation = merged.SkippedPopulation
		rep.SkippedCases = merged.SkippedCases
		rep.Warnings = append(rep.Warnings, merged.Warnings...)
	}
	if err != nil {
		return nil, nil, err
	}
	logger.Info("[Pipeline] %s", rep.CoverageLine())
	for _, warning := range merged.Warnings {
		logger.Warn("[Pipeline] %s", warning)
	}

	computed, skipped := percapita.Compute(merged.Rows)
	rep.SkippedZeroPop = skipped
	rep.Summary = percapita.Summarize(computed)

	ranked, err := rank.Rank(computed, req.TopN)
	if err != nil {
		return nil, nil, err
	}
	rep.TopNEffective = ranked.TopN
	rep.Top = ranked.Rows
	rep.Warnings = append(rep.Warnings, ranked.Warnings...)

	rep.Duration = time.Since(started)
	logger.Info("[Pipeline] run %s completed in %s (%d countries ranked)",
		rep.RunID, rep.Duration.Round(time.Millisecond), len(ranked.Rows))
	return ranked, rep, nil
}

// resolveColumns determines the key and value columns for one table,
// honoring overrides and falling back to the ambiguity resolver when
// detection is not confident.
func (r *Runner) resolveColumns(t *table.Table, keyOverride, valueOverride string) (merge.Input, error) {
	key, err := r.pickColumn(t, resolve.RoleKey, keyOverride)
	if err != nil {
		return merge.Input{}, err
	}

	var value string
	if valueOverride != "" {
		value, err = r.pickColumn(t, resolve.RoleValue, valueOverride)
	} else {
		value, err = r.resolveWithRetry(t, resolve.RoleValue, func() (string, error) {
			return r.resolver.ResolveValue(t, key)
		})
	}
	if err != nil {
		return merge.Input{}, err
	}
	return merge.Input{Table: t, KeyColumn: key, ValueColumn: value}, nil
}

func (r *Runner) pickColumn(t *table.Table, role resolve.Role, override string) (string, error) {
	if override != "" {
		if !t.HasHeader(override) {
			return "", core.NewUnknownColumnError(override)
		}
		return override, nil
	}
	return r.resolveWithRetry(t, role, func() (string, error) {
		return r.resolver.Resolve(t, role)
	})
}

// resolveWithRetry runs the detection function and, on ambiguity, consults
// the installed resolver once. The chosen column must exist in the table.
func (r *Runner) resolveWithRetry(t *table.Table, role resolve.Role, detect func() (string, error)) (string, error) {
	column, err := detect()
	if err == nil {
		return column, nil
	}
	var ambiguous *resolve.AmbiguousColumnError
	if !errors.As(err, &ambiguous) || r.onAmbiguity == nil {
		return "", err
	}
	chosen, err := r.onAmbiguity(ambiguous)
	if err != nil {
		return "", err
	}
	if !t.HasHeader(chosen) {
		return "", core.NewUnknownColumnError(chosen)
	}
	logger.Info("[Pipeline] %s column for table %q resolved to %q by caller", role, t.Name, chosen)
	return chosen, nil
}
