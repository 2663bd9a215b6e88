package config

import (
	"os"
	"strconv"

	"covidetl/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Inputs   InputConfig
	Output   OutputConfig
	Analysis AnalysisConfig
	Database DatabaseConfig
	Columns  ColumnOverrides
}

// InputConfig holds the two input datasets and optional alias overrides
type InputConfig struct {
	PopulationFile string
	CasesFile      string
	AliasFile      string // optional JSON alias table merged over the defaults
}

// OutputConfig holds output locations and optional renderers
type OutputConfig struct {
	Dir        string
	WriteExcel bool
	WriteHTML  bool
}

// AnalysisConfig holds analysis parameters
type AnalysisConfig struct {
	TopN int
}

// DatabaseConfig holds the optional warehouse export settings
type DatabaseConfig struct {
	URL   string
	Table string
}

// Enabled reports whether a warehouse export should run.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ColumnOverrides short-circuits column resolution per table. Empty fields
// mean auto-detect.
type ColumnOverrides struct {
	PopulationKey   string
	PopulationValue string
	CasesKey        string
	CasesValue      string
}

// Load reads configuration from environment variables and validates it.
// Flags set by the CLI may override individual fields afterwards.
func Load() (*Config, error) {
	config := &Config{
		Inputs: InputConfig{
			PopulationFile: os.Getenv("COVIDETL_POPULATION_FILE"),
			CasesFile:      os.Getenv("COVIDETL_CASES_FILE"),
			AliasFile:      os.Getenv("COVIDETL_ALIAS_FILE"),
		},
		Output: OutputConfig{
			Dir:        getEnv("COVIDETL_OUTPUT_DIR", "data"),
			WriteExcel: getBoolEnv("COVIDETL_WRITE_EXCEL", true),
			WriteHTML:  getBoolEnv("COVIDETL_WRITE_HTML", true),
		},
		Analysis: AnalysisConfig{
			TopN: getIntEnv("COVIDETL_TOP_N", 10),
		},
		Database: DatabaseConfig{
			URL:   os.Getenv("DATABASE_URL"),
			Table: getEnv("COVIDETL_EXPORT_TABLE", "covid_cases_per_100k"),
		},
		Columns: ColumnOverrides{
			PopulationKey:   os.Getenv("COVIDETL_POPULATION_KEY_COLUMN"),
			PopulationValue: os.Getenv("COVIDETL_POPULATION_VALUE_COLUMN"),
			CasesKey:        os.Getenv("COVIDETL_CASES_KEY_COLUMN"),
			CasesValue:      os.Getenv("COVIDETL_CASES_VALUE_COLUMN"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Analysis.TopN < 1 {
		return errors.ConfigInvalid("COVIDETL_TOP_N must be >= 1")
	}
	if c.Output.Dir == "" {
		return errors.ConfigInvalid("output directory must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
