package ports

import (
	"context"

	"covidetl/domain/table"
)

// TableLoader reads an external tabular file into the schema-free form the
// pipeline consumes. Implementations own file I/O and encoding concerns.
type TableLoader interface {
	Load(ctx context.Context, path, name string) (*table.Table, error)
}
