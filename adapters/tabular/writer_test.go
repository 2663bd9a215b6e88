package tabular

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidetl/domain/merge"
	"covidetl/domain/rank"
)

func TestWriteResultRoundTrip(t *testing.T) {
	result := &rank.RankedResult{
		TopN: 2,
		Rows: []merge.MergedRow{
			{Key: "france", DisplayName: "France", Population: 64626628, Cases: 2500000, CasesPer100k: 3868.3743},
			{Key: "italy", DisplayName: "Italy", Population: 59037474, Cases: 1000000, CasesPer100k: 1693.8349},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "covid_cases_per_100k.csv")
	ctx := context.Background()
	require.NoError(t, NewWriter().WriteResult(ctx, result, path))

	tab, err := NewReader().Load(ctx, path, "results")
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "population", "cases", "cases_per_100k"}, tab.Headers)
	require.Len(t, tab.Rows, 2)
	assert.Equal(t, "France", tab.Rows[0]["country"])
	assert.Equal(t, "64626628", tab.Rows[0]["population"])
	// Rounded to two decimals at presentation.
	assert.Equal(t, "3868.37", tab.Rows[0]["cases_per_100k"])
	assert.Equal(t, "1693.83", tab.Rows[1]["cases_per_100k"])
}
