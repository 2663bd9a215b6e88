package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidetl/domain/core"
	"covidetl/domain/normalize"
	"covidetl/domain/resolve"
	"covidetl/domain/table"
	"covidetl/internal/testkit"
)

// fakeLoader serves in-memory tables keyed by path.
type fakeLoader struct {
	tables map[string]*table.Table
}

func (f *fakeLoader) Load(ctx context.Context, path, name string) (*table.Table, error) {
	t, ok := f.tables[path]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", path)
	}
	return t, nil
}

func fixtureRunner(pop, cases *table.Table, onAmbiguity AmbiguityResolver) (*Runner, Request) {
	loader := &fakeLoader{tables: map[string]*table.Table{
		"population.csv": pop,
		"cases.csv":      cases,
	}}
	runner := NewRunner(loader, normalize.DefaultAliases(), onAmbiguity)
	return runner, Request{
		PopulationFile: "population.csv",
		CasesFile:      "cases.csv",
		TopN:           10,
	}
}

func TestRunEndToEnd(t *testing.T) {
	runner, req := fixtureRunner(testkit.PopulationTable(), testkit.CasesTable(), nil)

	ranked, rep, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	// Italy, France (case-folded) and US (aliased) match; Wakanda does not;
	// Atlantis is dropped on the population side for population 0.
	require.Len(t, ranked.Rows, 3)
	assert.Equal(t, 3, rep.MergedCountries)
	assert.Equal(t, 4, rep.CoverageTotal)
	assert.Equal(t, "merged 3/4 countries", rep.CoverageLine())
	assert.Equal(t, 1, rep.SkippedPopulation)
	assert.Contains(t, rep.UnmatchedCases, normalize.CanonicalKey("wakanda"))

	// France has the highest rate in the fixture.
	assert.Equal(t, "France", ranked.Rows[0].DisplayName)
	assert.InDelta(t, 3868.37, ranked.Rows[0].CasesPer100k, 0.01)

	// Requested 10, only 3 available.
	assert.True(t, ranked.Clamped)
	assert.Equal(t, 3, rep.TopNEffective)
	assert.NotEmpty(t, rep.Warnings)
}

func TestRunDuplicatePopulationLastWins(t *testing.T) {
	pop := testkit.Table("population",
		[]string{"country", "pop"},
		[]string{"Italy", "59000000"},
		[]string{"ITALY ", "59000000"},
	)
	cases := testkit.Table("cases",
		[]string{"country", "cases"},
		[]string{"Italy", "1000"},
	)
	runner, req := fixtureRunner(pop, cases, nil)

	ranked, rep, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, ranked.Rows, 1)

	row := ranked.Rows[0]
	assert.Equal(t, int64(59000000), row.Population)
	assert.Equal(t, int64(1000), row.Cases)
	assert.InDelta(t, 1.6949, row.CasesPer100k, 0.0001)
	assert.Equal(t, 1, rep.DuplicateKeys)
}

func TestRunEmptyMergeIsFatal(t *testing.T) {
	pop := testkit.Table("population",
		[]string{"country", "pop"},
		[]string{"Atlantis", "1000"},
	)
	cases := testkit.Table("cases",
		[]string{"country", "cases"},
		[]string{"France", "10"},
	)
	runner, req := fixtureRunner(pop, cases, nil)

	_, _, err := runner.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, core.IsEmptyMerge(err))
}

func TestRunConsultsAmbiguityResolver(t *testing.T) {
	// Two country-shaped columns: key detection cannot pick one.
	pop := testkit.Table("population",
		[]string{"name", "capital", "population"},
		[]string{"Italy", "Rome", "59000000"},
		[]string{"France", "Paris", "64000000"},
	)
	cases := testkit.Table("cases",
		[]string{"country", "cases"},
		[]string{"Italy", "1000"},
	)

	var seen *resolve.AmbiguousColumnError
	resolver := func(err *resolve.AmbiguousColumnError) (string, error) {
		seen = err
		return "name", nil
	}
	runner, req := fixtureRunner(pop, cases, resolver)

	ranked, _, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, ranked.Rows, 1)

	require.NotNil(t, seen)
	assert.Equal(t, resolve.RoleKey, seen.Role)
	assert.Equal(t, []string{"name", "capital"}, seen.Candidates)
}

func TestRunAmbiguityWithoutResolverPropagates(t *testing.T) {
	pop := testkit.Table("population",
		[]string{"name", "capital", "population"},
		[]string{"Italy", "Rome", "59000000"},
	)
	runner, req := fixtureRunner(pop, testkit.CasesTable(), nil)

	_, _, err := runner.Run(context.Background(), req)
	var ambiguous *resolve.AmbiguousColumnError
	require.ErrorAs(t, err, &ambiguous)
}

func TestRunColumnOverrides(t *testing.T) {
	pop := testkit.Table("population",
		[]string{"x", "y"},
		[]string{"Italy", "59000000"},
	)
	cases := testkit.Table("cases",
		[]string{"country", "cases"},
		[]string{"Italy", "1000"},
	)
	runner, req := fixtureRunner(pop, cases, nil)
	req.Overrides = Overrides{PopulationKey: "x", PopulationValue: "y"}

	ranked, _, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, ranked.Rows, 1)
	assert.Equal(t, int64(59000000), ranked.Rows[0].Population)
}

func TestRunUnknownOverrideColumn(t *testing.T) {
	runner, req := fixtureRunner(testkit.PopulationTable(), testkit.CasesTable(), nil)
	req.Overrides = Overrides{PopulationKey: "no_such_column"}

	_, _, err := runner.Run(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestRunInvalidTopN(t *testing.T) {
	runner, req := fixtureRunner(testkit.PopulationTable(), testkit.CasesTable(), nil)
	req.TopN = 0

	_, _, err := runner.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, core.IsInvalidTopN(err))
}
