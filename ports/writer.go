package ports

import (
	"context"

	"covidetl/domain/rank"
)

// ResultWriter serializes a ranked result to a delimited text file.
type ResultWriter interface {
	WriteResult(ctx context.Context, result *rank.RankedResult, path string) error
}

// ChartRenderer draws the ranked top-N as a horizontal bar chart, highest
// metric at the top, labeled by display name.
type ChartRenderer interface {
	RenderChart(ctx context.Context, result *rank.RankedResult, path string) error
}
