// Package excelreport renders the ranked result as an Excel workbook with a
// horizontal bar chart of the top countries, the pipeline's visualization
// output.
package excelreport

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"covidetl/domain/rank"
	"covidetl/internal/errors"
)

const sheet = "Rankings"

// Writer produces the workbook-with-chart report
type Writer struct{}

// NewWriter creates a new Excel report writer
func NewWriter() *Writer {
	return &Writer{}
}

// RenderChart writes a workbook containing the ranked rows and a horizontal
// bar chart of CasesPer100k, highest rate at the top, labeled by display
// name.
func (w *Writer) RenderChart(ctx context.Context, result *rank.RankedResult, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory for %s", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrapf(err, "failed to create sheet %s", sheet)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "failed to drop default sheet")
	}

	headers := []string{"Country", "Population", "Cases", "Cases per 100k"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.Wrapf(err, "failed to write header %s", h)
		}
	}
	for r, row := range result.Rows {
		values := []interface{}{row.DisplayName, row.Population, row.Cases, row.CasesPer100k}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrapf(err, "failed to write row %d", r)
			}
		}
	}

	n := len(result.Rows)
	if n > 0 {
		chart := &excelize.Chart{
			Type: excelize.Bar, // horizontal bars
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$D$1", sheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, n+1),
				Values:     fmt.Sprintf("%s!$D$2:$D$%d", sheet, n+1),
			}},
			Title: []excelize.RichTextRun{
				{Text: fmt.Sprintf("Top %d countries by COVID-19 cases per 100k", n)},
			},
			// Rows are written best-first; reversing the category axis puts
			// the highest rate at the top of the chart.
			XAxis:  excelize.ChartAxis{ReverseOrder: true},
			Legend: excelize.ChartLegend{Position: "none"},
		}
		if err := f.AddChart(sheet, "F2", chart); err != nil {
			return errors.Wrap(err, "failed to add bar chart")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	log.Printf("[ExcelReport] workbook with %d-row chart written to %s", n, path)
	return nil
}
