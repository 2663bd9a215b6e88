package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "covidetl/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Output.Dir)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, "covid_cases_per_100k", cfg.Database.Table)
	assert.True(t, cfg.Output.WriteExcel)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("COVIDETL_TOP_N", "25")
	t.Setenv("COVIDETL_OUTPUT_DIR", "/tmp/out")
	t.Setenv("COVIDETL_WRITE_EXCEL", "false")
	t.Setenv("DATABASE_URL", "postgres://localhost/covid")
	t.Setenv("COVIDETL_POPULATION_KEY_COLUMN", "Country/Territory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Analysis.TopN)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.False(t, cfg.Output.WriteExcel)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "Country/Territory", cfg.Columns.PopulationKey)
}

func TestLoadRejectsInvalidTopN(t *testing.T) {
	t.Setenv("COVIDETL_TOP_N", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestMalformedIntFallsBack(t *testing.T) {
	t.Setenv("COVIDETL_TOP_N", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Analysis.TopN)
}
