package ports

import (
	"context"

	"covidetl/domain/rank"
)

// WarehouseExporter ships a ranked result to an external analytical store.
type WarehouseExporter interface {
	Export(ctx context.Context, result *rank.RankedResult) (int, error)
	VerifyCount(ctx context.Context, expected int) error
}
