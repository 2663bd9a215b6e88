// Package tabular reads and writes the delimited files the pipeline
// exchanges with the outside world. CSV and XLSX inputs are supported; both
// produce the same schema-free table form.
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"covidetl/domain/core"
	"covidetl/domain/table"
	"covidetl/internal/errors"
)

// Reader loads CSV and XLSX files into tables
type Reader struct{}

// NewReader creates a new tabular file reader
func NewReader() *Reader {
	return &Reader{}
}

// Load reads the file at path into a Table. The format is chosen by
// extension: .xlsx goes through excelize, everything else is parsed as CSV.
func (r *Reader) Load(ctx context.Context, path, name string) (*table.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.LoadFailed(path, err)
	}

	var rows [][]string
	var err error
	start := time.Now()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, errors.LoadFailed(path, err)
	}
	log.Printf("[Reader] %s read in %.2fms (%d rows)", path,
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.LoadFailed(path, fmt.Errorf("%w: need a header row and at least one data row", core.ErrEmptyTable))
	}

	return buildTable(name, rows), nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, cells fill by position
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// First sheet, whatever it is named.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// buildTable converts raw string rows into the schema-free table form,
// trimming header whitespace and aligning cells by position.
func buildTable(name string, rows [][]string) *table.Table {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]table.Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(table.Row, len(headers))
		for j, cell := range raw {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, row)
	}

	return &table.Table{Name: name, Headers: headers, Rows: dataRows}
}
