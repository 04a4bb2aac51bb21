package rq

import (
	"math"

	"prmetrics/domain/metrics"
	"prmetrics/domain/record"
	"prmetrics/internal/errors"
)

// Output is the complete result of one research question: the comparison
// table plus any RQ-specific distribution tables.
type Output struct {
	Table  *metrics.ResultTable
	Extras []metrics.SupplementaryTable
}

// Driver defines one research question: which metrics to compute, which
// grouping dimensions partition the data, and any metric-specific derivation
// before samples are formed.
type Driver interface {
	Name() string
	TableName() string
	Schema() record.Schema
	Run(tbl *record.Table) (*Output, error)
}

// requireColumns checks a driver's declared columns against the input table.
// A missing column is a configuration error: fatal for this driver's run,
// reported with the column name, and isolated from the other drivers.
func requireColumns(tbl *record.Table, labels, values []string) error {
	for _, c := range labels {
		if !tbl.HasLabelColumn(c) {
			return errors.MissingColumn(tbl.Name, c)
		}
	}
	for _, c := range values {
		if !tbl.HasValueColumn(c) {
			return errors.MissingColumn(tbl.Name, c)
		}
	}
	return nil
}

// buildSamples extracts one sample per group label for a metric, applying the
// spec's derivation per record. Absent values and undefined derivations
// (division by zero, non-finite results) are excluded from the sample, never
// propagated as NaN. Records without the grouping label are skipped.
func buildSamples(tbl *record.Table, spec metrics.MetricSpec, dimension string) map[string][]float64 {
	samples := make(map[string][]float64)
	for _, rec := range tbl.Records {
		group := rec.Label(dimension)
		if group == "" {
			continue
		}
		if _, seen := samples[group]; !seen {
			samples[group] = []float64{}
		}
		v, ok := deriveValue(rec, spec)
		if !ok {
			continue
		}
		samples[group] = append(samples[group], v)
	}
	return samples
}

// deriveValue applies a metric spec's derivation rule to one record.
func deriveValue(rec record.Record, spec metrics.MetricSpec) (float64, bool) {
	src := rec.Value(spec.SourceColumn)
	if !src.Valid {
		return 0, false
	}
	var v float64
	switch spec.Derivation {
	case metrics.DeriveRate:
		denom := rec.Value(spec.DenomColumn)
		if !denom.Valid || denom.F == 0 {
			return 0, false
		}
		v = src.F / denom.F
	case metrics.DeriveNormalized:
		v = src.F / spec.Scale
	default:
		v = src.F
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
