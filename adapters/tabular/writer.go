package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"covidetl/domain/rank"
	"covidetl/internal/errors"
)

// resultHeaders is the fixed output schema for ranked results.
var resultHeaders = []string{"country", "population", "cases", "cases_per_100k"}

// Writer serializes ranked results to CSV
type Writer struct{}

// NewWriter creates a new CSV result writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteResult writes the ranked rows to a CSV file at path, creating parent
// directories as needed. The metric is rounded to two decimals here; the
// in-memory value stays unrounded.
func (w *Writer) WriteResult(ctx context.Context, result *rank.RankedResult, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory for %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(resultHeaders); err != nil {
		return errors.Wrapf(err, "failed to write header to %s", path)
	}
	for _, row := range result.Rows {
		record := []string{
			row.DisplayName,
			strconv.FormatInt(row.Population, 10),
			strconv.FormatInt(row.Cases, 10),
			fmt.Sprintf("%.2f", row.CasesPer100k),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write row to %s", path)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrapf(err, "failed to flush %s", path)
	}

	log.Printf("[Writer] %d ranked rows written to %s", len(result.Rows), path)
	return nil
}
