package tabular

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"prmetrics/domain/record"
)

// WriteDataTable writes an analysis-ready table as <dir>/<name>.csv in the
// layout the reader expects: an id column, then labels, then values. Used by
// the synthetic data command.
func WriteDataTable(dir string, tbl *record.Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, tbl.Name+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"id"}, tbl.Schema.LabelColumns...)
	header = append(header, tbl.Schema.ValueColumns...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range tbl.Records {
		row := []string{rec.ID}
		for _, c := range tbl.Schema.LabelColumns {
			row = append(row, rec.Label(c))
		}
		for _, c := range tbl.Schema.ValueColumns {
			v := rec.Value(c)
			if !v.Valid {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(v.F))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
