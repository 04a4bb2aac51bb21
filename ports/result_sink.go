package ports

import (
	"prmetrics/domain/metrics"
)

// ResultSink persists result tables for the visualization/reporting stage.
// Implementations must be deterministic: identical input yields byte-identical
// output.
type ResultSink interface {
	// WriteResultTable writes one RQ's comparison table under a stable
	// per-RQ file name.
	WriteResultTable(table *metrics.ResultTable) error

	// WriteSupplementary writes an RQ-specific distribution table.
	WriteSupplementary(table metrics.SupplementaryTable) error

	// WriteReport stores the rendered markdown run report.
	WriteReport(markdown string) error
}

// WorkbookWriter assembles all result tables of a run into a single summary
// workbook.
type WorkbookWriter interface {
	WriteWorkbook(tables []*metrics.ResultTable, extras []metrics.SupplementaryTable) error
}
