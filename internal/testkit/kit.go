// Package testkit provides table fixtures for pipeline and domain tests.
package testkit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"covidetl/domain/table"
)

// Table builds an in-memory table from headers and positional rows.
func Table(name string, headers []string, rows ...[]string) *table.Table {
	dataRows := make([]table.Row, 0, len(rows))
	for _, raw := range rows {
		row := make(table.Row, len(headers))
		for i, cell := range raw {
			if i < len(headers) {
				row[headers[i]] = cell
			}
		}
		dataRows = append(dataRows, row)
	}
	return &table.Table{Name: name, Headers: headers, Rows: dataRows}
}

// PopulationTable returns a small realistic population fixture.
func PopulationTable() *table.Table {
	return Table("population",
		[]string{"Country/Territory", "2022 Population"},
		[]string{"Italy", "59037474"},
		[]string{"France", "64626628"},
		[]string{"Germany", "83369843"},
		[]string{"United States", "338289857"},
		[]string{"Atlantis", "0"},
	)
}

// CasesTable returns a cases fixture whose names only partially line up
// with PopulationTable, exercising aliasing and unmatched reporting.
func CasesTable() *table.Table {
	return Table("cases",
		[]string{"Country", "Confirmed"},
		[]string{"Italy", "1000000"},
		[]string{"france", "2500000"},
		[]string{"US", "5000000"},
		[]string{"Wakanda", "42"},
	)
}

// WriteCSV writes rows as a CSV file under the test's temp dir and returns
// its path.
func WriteCSV(t *testing.T, name string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture %s: %v", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
