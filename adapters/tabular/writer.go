package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"prmetrics/domain/metrics"
	"prmetrics/ports"
)

// resultColumns is the fixed column order of every comparison table file.
var resultColumns = []string{
	"metric", "dimension", "group_a", "group_b",
	"n_a", "n_b",
	"mean_a", "median_a", "std_a", "q1_a", "q3_a", "iqr_a",
	"mean_b", "median_b", "std_b", "q1_b", "q3_b", "iqr_b",
	"effect_size", "magnitude",
	"test", "statistic", "p_value", "p_corrected", "significant",
	"status",
}

// CSVWriter persists result tables as delimited files under a results
// directory, one file per research question with a stable name
// (<rq>_metrics.csv). Output is byte-identical across runs on identical
// input: fixed column order, stable row sort, 4-decimal numeric formatting.
type CSVWriter struct {
	resultsDir string
}

// NewCSVWriter creates a writer rooted at a results directory.
func NewCSVWriter(resultsDir string) *CSVWriter {
	return &CSVWriter{resultsDir: resultsDir}
}

var _ ports.ResultSink = (*CSVWriter)(nil)

// WriteResultTable writes one RQ's comparison rows.
func (w *CSVWriter) WriteResultTable(table *metrics.ResultTable) error {
	table.Sort()

	rows := make([][]string, 0, len(table.Rows)+1)
	rows = append(rows, resultColumns)
	for _, r := range table.Rows {
		rows = append(rows, resultRow(r))
	}
	return w.writeFile(table.RQ+"_metrics.csv", rows)
}

// WriteSupplementary writes a pre-formatted distribution table.
func (w *CSVWriter) WriteSupplementary(table metrics.SupplementaryTable) error {
	rows := make([][]string, 0, len(table.Rows)+1)
	rows = append(rows, table.Header)
	rows = append(rows, table.Rows...)
	return w.writeFile(table.Name+".csv", rows)
}

// WriteReport stores the markdown run report next to the tables.
func (w *CSVWriter) WriteReport(markdown string) error {
	if err := os.MkdirAll(w.resultsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}
	return os.WriteFile(filepath.Join(w.resultsDir, "report.md"), []byte(markdown), 0o644)
}

func (w *CSVWriter) writeFile(name string, rows [][]string) error {
	if err := os.MkdirAll(w.resultsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}
	path := filepath.Join(w.resultsDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cw.Flush()
	return cw.Error()
}

// resultRow serializes one comparison row. Undefined and untestable fields
// stay empty rather than printing misleading zeros.
func resultRow(r metrics.ComparisonResult) []string {
	row := []string{
		r.Metric, r.Dimension, r.GroupA, r.GroupB,
		strconv.Itoa(r.NA), strconv.Itoa(r.NB),
	}
	row = append(row, statsCells(r.StatsA)...)
	row = append(row, statsCells(r.StatsB)...)

	if r.EffectDefined {
		row = append(row, formatFloat(r.EffectSize))
	} else {
		row = append(row, "")
	}
	row = append(row, string(r.Magnitude))

	row = append(row, string(r.Test))
	if r.Testable {
		row = append(row,
			formatFloat(r.Statistic),
			formatFloat(r.PValue),
			formatFloat(r.PCorrected),
			strconv.FormatBool(r.Significant),
		)
	} else {
		row = append(row, "", "", "", "")
	}
	row = append(row, string(r.Status))
	return row
}

func statsCells(s *metrics.DescriptiveStats) []string {
	if s == nil {
		return []string{"", "", "", "", "", ""}
	}
	return []string{
		formatFloat(s.Mean),
		formatFloat(s.Median),
		formatFloat(s.StdDev),
		formatFloat(s.Q1),
		formatFloat(s.Q3),
		formatFloat(s.IQR),
	}
}

// formatFloat renders all numeric output at fixed 4-decimal precision, part
// of the byte-determinism guarantee.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
