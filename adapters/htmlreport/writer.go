// Package htmlreport renders the run report as a standalone HTML page.
package htmlreport

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"covidetl/domain/report"
	"covidetl/internal/errors"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>COVID-19 cases per 100k</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
%s</body>
</html>
`

// Writer converts the run report's Markdown into an HTML file
type Writer struct{}

// NewWriter creates a new HTML report writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the report to path.
func (w *Writer) Write(ctx context.Context, r *report.RunReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory for %s", path)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(r.Markdown()))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(doc, renderer)

	page := fmt.Sprintf(pageTemplate, body)
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	log.Printf("[HTMLReport] run report written to %s", path)
	return nil
}
