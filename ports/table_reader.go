package ports

import (
	"context"

	"prmetrics/domain/record"
)

// TableReader loads an analysis-ready table produced by the preprocessing
// stage. The schema declares which columns to parse as labels and which as
// numeric values; columns the file lacks are simply not present on the
// returned table, and drivers check for them.
type TableReader interface {
	ReadTable(ctx context.Context, name string, schema record.Schema) (*record.Table, error)
}
