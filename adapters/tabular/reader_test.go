package tabular

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidetl/domain/core"
	"covidetl/internal/testkit"
)

func TestLoadCSV(t *testing.T) {
	path := testkit.WriteCSV(t, "population.csv", [][]string{
		{" Country ", "2022 Population"},
		{"Italy", "59037474"},
		{"France ", "64626628"},
	})

	tab, err := NewReader().Load(context.Background(), path, "population")
	require.NoError(t, err)

	assert.Equal(t, "population", tab.Name)
	assert.Equal(t, []string{"Country", "2022 Population"}, tab.Headers, "headers are trimmed")
	require.Len(t, tab.Rows, 2)
	assert.Equal(t, "France", tab.Rows[1]["Country"], "cells are trimmed")
	assert.Equal(t, "59037474", tab.Rows[0]["2022 Population"])
}

func TestLoadCSVRaggedRows(t *testing.T) {
	path := testkit.WriteCSV(t, "ragged.csv", [][]string{
		{"Country", "Population", "Note"},
		{"Italy", "59037474"},
	})

	tab, err := NewReader().Load(context.Background(), path, "ragged")
	require.NoError(t, err)
	require.Len(t, tab.Rows, 1)
	assert.Equal(t, "", tab.Rows[0]["Note"], "missing cells read as empty")
}

func TestLoadRejectsHeaderOnlyFile(t *testing.T) {
	path := testkit.WriteCSV(t, "empty.csv", [][]string{
		{"Country", "Population"},
	})

	_, err := NewReader().Load(context.Background(), path, "empty")
	require.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewReader().Load(context.Background(), "/nonexistent/nope.csv", "nope")
	require.Error(t, err)
}
