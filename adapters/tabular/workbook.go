package tabular

import (
	"fmt"
	"os"
	"path/filepath"

	"prmetrics/domain/metrics"
	"prmetrics/ports"

	"github.com/xuri/excelize/v2"
)

// WorkbookWriter assembles every table of a run into one summary.xlsx, one
// sheet per result table, for reviewers who read spreadsheets rather than
// CSVs. Cell content matches the CSV output exactly.
type WorkbookWriter struct {
	resultsDir string
}

// NewWorkbookWriter creates a workbook writer rooted at a results directory.
func NewWorkbookWriter(resultsDir string) *WorkbookWriter {
	return &WorkbookWriter{resultsDir: resultsDir}
}

var _ ports.WorkbookWriter = (*WorkbookWriter)(nil)

// WriteWorkbook writes summary.xlsx with the comparison tables first, then
// the supplementary tables, in the order given.
func (w *WorkbookWriter) WriteWorkbook(tables []*metrics.ResultTable, extras []metrics.SupplementaryTable) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, table := range tables {
		table.Sort()
		rows := [][]string{resultColumns}
		for _, r := range table.Rows {
			rows = append(rows, resultRow(r))
		}
		if err := writeSheet(f, table.RQ+"_metrics", rows, first); err != nil {
			return err
		}
		first = false
	}
	for _, extra := range extras {
		rows := append([][]string{extra.Header}, extra.Rows...)
		if err := writeSheet(f, extra.Name, rows, first); err != nil {
			return err
		}
		first = false
	}

	if err := os.MkdirAll(w.resultsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}
	path := filepath.Join(w.resultsDir, "summary.xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// writeSheet fills one sheet; the very first table reuses the default sheet
// so the workbook has no empty leading page.
func writeSheet(f *excelize.File, name string, rows [][]string, reuseDefault bool) error {
	// Excel caps sheet names at 31 characters.
	if len(name) > 31 {
		name = name[:31]
	}
	if reuseDefault {
		defaultName := f.GetSheetName(0)
		if err := f.SetSheetName(defaultName, name); err != nil {
			return fmt.Errorf("failed to rename sheet %s: %w", name, err)
		}
	} else {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("failed to write sheet %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}
