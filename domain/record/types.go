package record

// Value is a numeric observation that may be explicitly absent. Absent values
// are excluded from every statistic downstream; they are never coerced to zero.
type Value struct {
	F     float64
	Valid bool
}

// Some wraps a present numeric value.
func Some(f float64) Value {
	return Value{F: f, Valid: true}
}

// Absent marks a missing observation.
func Absent() Value {
	return Value{}
}

// Record is one unit of observed activity (a pull request, a review comment).
// Records are immutable once they reach the analysis core.
type Record struct {
	ID     string
	Labels map[string]string
	Values map[string]Value
}

// Label returns the categorical label for a dimension, or "" when unset.
func (r Record) Label(dim string) string {
	return r.Labels[dim]
}

// Value returns the numeric observation for a column.
func (r Record) Value(col string) Value {
	return r.Values[col]
}

// Schema declares which columns of an analysis-ready table are categorical
// labels and which are numeric metric sources. Readers use it to parse, RQ
// drivers check their declared columns against the table before computing.
type Schema struct {
	LabelColumns []string
	ValueColumns []string
}

// Table is the analysis-ready collection handed over by the preprocessing
// stage. The core only reads it.
type Table struct {
	Name    string
	Schema  Schema
	Records []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// HasLabelColumn reports whether the table carries a label dimension.
func (t *Table) HasLabelColumn(name string) bool {
	for _, c := range t.Schema.LabelColumns {
		if c == name {
			return true
		}
	}
	return false
}

// HasValueColumn reports whether the table carries a numeric source column.
func (t *Table) HasValueColumn(name string) bool {
	for _, c := range t.Schema.ValueColumns {
		if c == name {
			return true
		}
	}
	return false
}
