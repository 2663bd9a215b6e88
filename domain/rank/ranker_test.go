package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidetl/domain/core"
	"covidetl/domain/merge"
)

func TestRankSortsDescendingByMetric(t *testing.T) {
	rows := []merge.MergedRow{
		{Key: "a", CasesPer100k: 10},
		{Key: "b", CasesPer100k: 30},
		{Key: "c", CasesPer100k: 20},
	}
	res, err := Rank(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, "b", res.Rows[0].Key.String())
	assert.Equal(t, "c", res.Rows[1].Key.String())
	assert.Equal(t, "a", res.Rows[2].Key.String())
}

func TestRankTieBreaking(t *testing.T) {
	rows := []merge.MergedRow{
		{Key: "zeta", Cases: 100, CasesPer100k: 50},
		{Key: "alpha", Cases: 100, CasesPer100k: 50},
		{Key: "mid", Cases: 500, CasesPer100k: 50},
	}
	res, err := Rank(rows, 3)
	require.NoError(t, err)

	// Equal metric: more absolute cases first; full tie: name ascending.
	assert.Equal(t, "mid", res.Rows[0].Key.String())
	assert.Equal(t, "alpha", res.Rows[1].Key.String())
	assert.Equal(t, "zeta", res.Rows[2].Key.String())
}

func TestRankTruncatesToTopN(t *testing.T) {
	rows := []merge.MergedRow{
		{Key: "a", CasesPer100k: 1},
		{Key: "b", CasesPer100k: 2},
		{Key: "c", CasesPer100k: 3},
	}
	res, err := Rank(rows, 2)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "c", res.Rows[0].Key.String())
	assert.False(t, res.Clamped)
}

func TestRankInvalidTopN(t *testing.T) {
	for _, topN := range []int{0, -1} {
		_, err := Rank([]merge.MergedRow{{Key: "a"}}, topN)
		require.Error(t, err)
		assert.True(t, core.IsInvalidTopN(err))
	}
}

func TestRankClampsOversizedTopN(t *testing.T) {
	rows := []merge.MergedRow{
		{Key: "a", CasesPer100k: 1},
		{Key: "b", CasesPer100k: 2},
	}
	res, err := Rank(rows, 10)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, 2, res.TopN)
	assert.True(t, res.Clamped)
	assert.NotEmpty(t, res.Warnings)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	rows := []merge.MergedRow{
		{Key: "a", CasesPer100k: 1},
		{Key: "b", CasesPer100k: 2},
	}
	_, err := Rank(rows, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", rows[0].Key.String())
}
