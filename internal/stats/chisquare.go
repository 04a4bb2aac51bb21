package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareResult holds a contingency-table independence test outcome.
type ChiSquareResult struct {
	Chi2 float64
	P    float64
	DF   int
}

// ChiSquareIndependence runs the chi-square test of independence on an
// observed contingency table (rows = one dimension, columns = the other).
// Returns ok=false when the table is degenerate: fewer than 2 non-empty rows
// or columns leaves nothing to test.
func ChiSquareIndependence(observed [][]float64) (ChiSquareResult, bool) {
	if len(observed) < 2 {
		return ChiSquareResult{}, false
	}
	cols := len(observed[0])
	if cols < 2 {
		return ChiSquareResult{}, false
	}

	rowTotals := make([]float64, len(observed))
	colTotals := make([]float64, cols)
	grand := 0.0
	for i, row := range observed {
		if len(row) != cols {
			return ChiSquareResult{}, false
		}
		for j, v := range row {
			rowTotals[i] += v
			colTotals[j] += v
			grand += v
		}
	}
	if grand == 0 {
		return ChiSquareResult{}, false
	}
	nonEmptyRows, nonEmptyCols := 0, 0
	for _, t := range rowTotals {
		if t > 0 {
			nonEmptyRows++
		}
	}
	for _, t := range colTotals {
		if t > 0 {
			nonEmptyCols++
		}
	}
	if nonEmptyRows < 2 || nonEmptyCols < 2 {
		return ChiSquareResult{}, false
	}

	chi2 := 0.0
	for i, row := range observed {
		for j, v := range row {
			expected := rowTotals[i] * colTotals[j] / grand
			if expected == 0 {
				continue
			}
			d := v - expected
			chi2 += d * d / expected
		}
	}

	df := (nonEmptyRows - 1) * (nonEmptyCols - 1)
	dist := distuv.ChiSquared{K: float64(df)}
	p := 1 - dist.CDF(chi2)
	if p < 0 {
		p = 0
	}
	return ChiSquareResult{Chi2: chi2, P: p, DF: df}, true
}
