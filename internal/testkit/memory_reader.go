package testkit

import (
	"context"
	"fmt"

	"prmetrics/domain/record"
)

// MemoryReader serves pre-built tables by name, for tests that exercise the
// pipeline without touching the filesystem.
type MemoryReader struct {
	tables map[string]*record.Table
}

// NewMemoryReader wraps the given tables in a reader
func NewMemoryReader(tables ...*record.Table) *MemoryReader {
	m := &MemoryReader{tables: make(map[string]*record.Table)}
	for _, t := range tables {
		m.tables[t.Name] = t
	}
	return m
}

// ReadTable returns the named table. Only columns present on both the
// request and the stored table survive, mirroring the file reader: drivers
// detect missing columns themselves.
func (m *MemoryReader) ReadTable(_ context.Context, name string, schema record.Schema) (*record.Table, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", name)
	}
	out := &record.Table{
		Name: name,
		Schema: record.Schema{
			LabelColumns: intersect(schema.LabelColumns, t.Schema.LabelColumns),
			ValueColumns: intersect(schema.ValueColumns, t.Schema.ValueColumns),
		},
		Records: t.Records,
	}
	return out, nil
}

func intersect(want, have []string) []string {
	set := make(map[string]bool, len(have))
	for _, c := range have {
		set[c] = true
	}
	var out []string
	for _, c := range want {
		if set[c] {
			out = append(out, c)
		}
	}
	return out
}
