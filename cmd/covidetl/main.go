// Command covidetl runs the COVID-19 per-capita analysis pipeline: it merges
// a population table with a case-count table, computes cases per 100k, and
// writes the ranked result as CSV, an Excel bar chart, and an HTML report.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"covidetl/adapters/aliasconf"
	"covidetl/adapters/excelreport"
	"covidetl/adapters/htmlreport"
	"covidetl/adapters/postgres"
	"covidetl/adapters/tabular"
	"covidetl/domain/merge"
	"covidetl/domain/rank"
	"covidetl/domain/report"
	"covidetl/domain/resolve"
	"covidetl/domain/table"
	"covidetl/internal/config"
	"covidetl/internal/pipeline"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "covidetl",
		Short: "Merge population and COVID-19 case data and rank countries by cases per 100k",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newInspectCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var flags struct {
		topN      int
		outputDir string
		aliasFile string
		noExcel   bool
		noHTML    bool
		overrides pipeline.Overrides
	}

	cmd := &cobra.Command{
		Use:   "run [population-file] [cases-file]",
		Short: "Run the full pipeline on two tabular files",
		Long: `Run the full pipeline: load both files (CSV or XLSX), detect the country
and numeric columns, normalize country names, merge, compute cases per
100,000 inhabitants, and write the ranked top-N.

Example: covidetl run world_population.csv covid_confirmed.csv --top-n 10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("top-n") {
				cfg.Analysis.TopN = flags.topN
			}
			if flags.outputDir != "" {
				cfg.Output.Dir = flags.outputDir
			}
			if flags.aliasFile != "" {
				cfg.Inputs.AliasFile = flags.aliasFile
			}
			if flags.noExcel {
				cfg.Output.WriteExcel = false
			}
			if flags.noHTML {
				cfg.Output.WriteHTML = false
			}
			cfg.Inputs.PopulationFile = args[0]
			cfg.Inputs.CasesFile = args[1]
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cfg, flags.overrides)
		},
	}

	cmd.Flags().IntVar(&flags.topN, "top-n", 10, "Number of top-ranked countries to keep")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for result files (default \"data\")")
	cmd.Flags().StringVar(&flags.aliasFile, "aliases", "", "JSON file with country-name alias overrides")
	cmd.Flags().BoolVar(&flags.noExcel, "no-excel", false, "Skip the Excel bar-chart report")
	cmd.Flags().BoolVar(&flags.noHTML, "no-html", false, "Skip the HTML run report")
	cmd.Flags().StringVar(&flags.overrides.PopulationKey, "population-key-column", "", "Country column in the population file")
	cmd.Flags().StringVar(&flags.overrides.PopulationValue, "population-value-column", "", "Population column in the population file")
	cmd.Flags().StringVar(&flags.overrides.CasesKey, "cases-key-column", "", "Country column in the cases file")
	cmd.Flags().StringVar(&flags.overrides.CasesValue, "cases-value-column", "", "Case-count column in the cases file")

	return cmd
}

func runPipeline(ctx context.Context, cfg *config.Config, overrides pipeline.Overrides) error {
	aliases, err := aliasconf.Load(cfg.Inputs.AliasFile)
	if err != nil {
		return err
	}

	mergeOverrides(&overrides, cfg.Columns)
	runner := pipeline.NewRunner(tabular.NewReader(), aliases, promptForColumn)
	ranked, rep, err := runner.Run(ctx, pipeline.Request{
		PopulationFile: cfg.Inputs.PopulationFile,
		CasesFile:      cfg.Inputs.CasesFile,
		TopN:           cfg.Analysis.TopN,
		Overrides:      overrides,
	})
	if err != nil {
		return err
	}

	csvPath := filepath.Join(cfg.Output.Dir, "covid_cases_per_100k.csv")
	if err := tabular.NewWriter().WriteResult(ctx, ranked, csvPath); err != nil {
		return err
	}
	if cfg.Output.WriteExcel {
		xlsxPath := filepath.Join(cfg.Output.Dir, "covid_cases_per_100k.xlsx")
		if err := excelreport.NewWriter().RenderChart(ctx, ranked, xlsxPath); err != nil {
			return err
		}
	}
	if cfg.Output.WriteHTML {
		htmlPath := filepath.Join(cfg.Output.Dir, "run_report.html")
		if err := htmlreport.NewWriter().Write(ctx, rep, htmlPath); err != nil {
			return err
		}
	}

	if cfg.Database.Enabled() {
		if err := exportRanked(ctx, cfg.Database, ranked); err != nil {
			return err
		}
	}

	printSummary(rep, ranked)
	return nil
}

func mergeOverrides(flags *pipeline.Overrides, env config.ColumnOverrides) {
	if flags.PopulationKey == "" {
		flags.PopulationKey = env.PopulationKey
	}
	if flags.PopulationValue == "" {
		flags.PopulationValue = env.PopulationValue
	}
	if flags.CasesKey == "" {
		flags.CasesKey = env.CasesKey
	}
	if flags.CasesValue == "" {
		flags.CasesValue = env.CasesValue
	}
}

func exportRanked(ctx context.Context, db config.DatabaseConfig, ranked *rank.RankedResult) error {
	exporter, err := postgres.Connect(ctx, db.URL, db.Table)
	if err != nil {
		return err
	}
	defer exporter.Close()

	exported, err := exporter.Export(ctx, ranked)
	if err != nil {
		return err
	}
	return exporter.VerifyCount(ctx, exported)
}

// promptForColumn is the interactive seam: when column detection is not
// confident, list the candidates and let the analyst pick one.
func promptForColumn(ambiguous *resolve.AmbiguousColumnError) (string, error) {
	fmt.Printf("Could not determine the %s column for table %q.\n", ambiguous.Role, ambiguous.Table)
	for i, candidate := range ambiguous.Candidates {
		fmt.Printf("  %d: %s\n", i, candidate)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Select a column by number: ")
		if !scanner.Scan() {
			return "", fmt.Errorf("no selection made: %w", ambiguous)
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 0 || choice >= len(ambiguous.Candidates) {
			fmt.Printf("Invalid input. Please enter a number between 0 and %d.\n", len(ambiguous.Candidates)-1)
			continue
		}
		return ambiguous.Candidates[choice], nil
	}
}

func printSummary(rep *report.RunReport, ranked *rank.RankedResult) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Pipeline completed: %s\n", rep.CoverageLine())
	fmt.Println(strings.Repeat("=", 60))
	for i, row := range ranked.Rows {
		fmt.Printf("%2d. %-30s %10.2f cases per 100k\n", i+1, row.DisplayName, row.CasesPer100k)
	}
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show which columns would be used for a tabular file",
		Long: `Load a file and report the detected country and numeric columns without
running the pipeline. Useful before a run against an unfamiliar export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tabular.NewReader().Load(cmd.Context(), args[0], filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d columns, %d rows\n", args[0], len(t.Headers), len(t.Rows))

			resolver := resolve.NewResolver()
			reportRole(resolver, t, resolve.RoleKey)
			reportRole(resolver, t, resolve.RoleValue)
			return nil
		},
	}
	return cmd
}

func reportRole(resolver *resolve.Resolver, t *table.Table, role resolve.Role) {
	column, err := resolver.Resolve(t, role)
	if err != nil {
		fmt.Printf("  %s column: %v\n", role, err)
		return
	}
	fmt.Printf("  %s column: %q\n", role, column)
}

func newExportCmd() *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "export [results-csv]",
		Short: "Export a previously written results CSV to Postgres",
		Long: `Load a covid_cases_per_100k.csv produced by 'run' and insert its rows
into the configured Postgres database (DATABASE_URL).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if tableName != "" {
				cfg.Database.Table = tableName
			}
			if !cfg.Database.Enabled() {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			ranked, err := loadResultsCSV(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return exportRanked(cmd.Context(), cfg.Database, ranked)
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "Target table name (default covid_cases_per_100k)")
	return cmd
}

// loadResultsCSV reads a results file back into ranked form for export.
func loadResultsCSV(ctx context.Context, path string) (*rank.RankedResult, error) {
	t, err := tabular.NewReader().Load(ctx, path, "results")
	if err != nil {
		return nil, err
	}

	rows := make([]merge.MergedRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		population, okPop := table.NumericCell(row["population"])
		cases, okCases := table.NumericCell(row["cases"])
		metric, okMetric := table.NumericCell(row["cases_per_100k"])
		if row["country"] == "" || !okPop || !okCases || !okMetric {
			return nil, fmt.Errorf("row %d of %s is not a valid results row", i, path)
		}
		rows = append(rows, merge.MergedRow{
			DisplayName:  row["country"],
			Population:   int64(population),
			Cases:        int64(cases),
			CasesPer100k: metric,
		})
	}
	return &rank.RankedResult{Rows: rows, TopN: len(rows)}, nil
}
