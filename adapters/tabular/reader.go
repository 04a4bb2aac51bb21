package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"prmetrics/domain/record"
	"prmetrics/ports"

	"github.com/xuri/excelize/v2"
)

// Reader loads analysis-ready tables from a data directory, as CSV or XLSX.
// For a table name "rq1_data" it tries rq1_data.csv first, then
// rq1_data.xlsx (Sheet1).
type Reader struct {
	dataDir string
}

// NewReader creates a table reader over a data directory.
func NewReader(dataDir string) *Reader {
	return &Reader{dataDir: dataDir}
}

var _ ports.TableReader = (*Reader)(nil)

// ReadTable loads one named table. Empty cells and "NA"/"NaN" markers in
// value columns become explicitly absent observations; they are never read
// as zero.
func (r *Reader) ReadTable(ctx context.Context, name string, schema record.Schema) (*record.Table, error) {
	csvPath := filepath.Join(r.dataDir, name+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		rows, err := r.readCSV(csvPath)
		if err != nil {
			return nil, err
		}
		return buildTable(name, schema, rows), nil
	}

	xlsxPath := filepath.Join(r.dataDir, name+".xlsx")
	if _, err := os.Stat(xlsxPath); err == nil {
		rows, err := r.readXLSX(xlsxPath)
		if err != nil {
			return nil, err
		}
		return buildTable(name, schema, rows), nil
	}

	return nil, fmt.Errorf("table %q not found under %s (tried .csv, .xlsx)", name, r.dataDir)
}

func (r *Reader) readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

func (r *Reader) readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1 of %s: %w", path, err)
	}
	return rows, nil
}

// buildTable converts raw header+rows into records, keeping only the columns
// the schema declares and that the file actually has. Drivers detect missing
// declared columns through the table's schema.
func buildTable(name string, schema record.Schema, raw [][]string) *record.Table {
	tbl := &record.Table{Name: name}
	if len(raw) == 0 {
		return tbl
	}

	header := raw[0]
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.TrimSpace(h)] = i
	}

	for _, c := range schema.LabelColumns {
		if _, ok := colIndex[c]; ok {
			tbl.Schema.LabelColumns = append(tbl.Schema.LabelColumns, c)
		}
	}
	for _, c := range schema.ValueColumns {
		if _, ok := colIndex[c]; ok {
			tbl.Schema.ValueColumns = append(tbl.Schema.ValueColumns, c)
		}
	}

	idIdx, hasID := colIndex["id"]

	for rowNum, row := range raw[1:] {
		rec := record.Record{
			Labels: make(map[string]string, len(tbl.Schema.LabelColumns)),
			Values: make(map[string]record.Value, len(tbl.Schema.ValueColumns)),
		}
		if hasID && idIdx < len(row) {
			rec.ID = strings.TrimSpace(row[idIdx])
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(rowNum + 1)
		}
		for _, c := range tbl.Schema.LabelColumns {
			if i := colIndex[c]; i < len(row) {
				rec.Labels[c] = strings.TrimSpace(row[i])
			}
		}
		for _, c := range tbl.Schema.ValueColumns {
			rec.Values[c] = parseCell(cellAt(row, colIndex[c]))
		}
		tbl.Records = append(tbl.Records, rec)
	}
	return tbl
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCell maps a raw cell to a numeric observation or the absent marker.
func parseCell(cell string) record.Value {
	if cell == "" {
		return record.Absent()
	}
	switch strings.ToLower(cell) {
	case "na", "nan", "null", "none":
		return record.Absent()
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return record.Absent()
	}
	return record.Some(f)
}
