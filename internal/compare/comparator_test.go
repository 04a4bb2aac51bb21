package compare

import (
	"testing"

	"prmetrics/domain/metrics"
)

func TestCompare_PairOrderIsLexical(t *testing.T) {
	c := New(0.05, metrics.CorrectionBH)
	samples := map[string][]float64{
		"charlie": {1, 2, 3},
		"alpha":   {4, 5, 6},
		"bravo":   {7, 8, 9},
	}

	rows := c.Compare("latency", "team", samples)
	if len(rows) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(rows))
	}
	wantPairs := [][2]string{
		{"alpha", "bravo"},
		{"alpha", "charlie"},
		{"bravo", "charlie"},
	}
	for i, w := range wantPairs {
		if rows[i].GroupA != w[0] || rows[i].GroupB != w[1] {
			t.Errorf("pair %d = %s vs %s, want %s vs %s", i, rows[i].GroupA, rows[i].GroupB, w[0], w[1])
		}
	}
}

func TestCompare_InsufficientPairsKept(t *testing.T) {
	c := New(0.05, metrics.CorrectionBH)
	samples := map[string][]float64{
		"big":   {1, 2, 3, 4},
		"tiny":  {5},
		"empty": {},
	}

	rows := c.Compare("latency", "team", samples)
	if len(rows) != 3 {
		t.Fatalf("insufficient pairs must not be dropped; got %d rows", len(rows))
	}

	byPair := indexRows(rows)
	bigTiny := byPair["big|tiny"]
	if bigTiny.Status != metrics.StatusInsufficient {
		t.Errorf("big vs tiny should be insufficient, got %s", bigTiny.Status)
	}
	if bigTiny.StatsA == nil || bigTiny.StatsB == nil {
		t.Error("descriptives must still be populated for the single observation")
	}
	if !bigTiny.EffectDefined {
		t.Error("effect is defined whenever both samples are non-empty")
	}
	if bigTiny.Testable {
		t.Error("a 1-observation group must not be testable")
	}

	bigEmpty := byPair["big|empty"]
	if bigEmpty.Status != metrics.StatusInsufficient {
		t.Errorf("big vs empty should be insufficient, got %s", bigEmpty.Status)
	}
	if bigEmpty.EffectDefined {
		t.Error("effect against an empty group must stay undefined")
	}
	if bigEmpty.Magnitude != metrics.MagnitudeUndefined {
		t.Errorf("magnitude = %s, want undefined", bigEmpty.Magnitude)
	}
}

func TestCompare_SeparatedGroupsSignificant(t *testing.T) {
	c := New(0.05, metrics.CorrectionBH)
	samples := map[string][]float64{
		"ai":    {1, 2, 3, 4, 5},
		"human": {6, 7, 8, 9, 10},
	}

	rows := c.Compare("review_duration_hours", "author_type", samples)
	if len(rows) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(rows))
	}
	row := rows[0]
	if !row.EffectDefined || row.EffectSize != -1 {
		t.Errorf("expected delta -1, got %v", row.EffectSize)
	}
	if row.Magnitude != metrics.MagnitudeLarge {
		t.Errorf("magnitude = %s, want large", row.Magnitude)
	}
	if row.PValue >= 0.01 {
		t.Errorf("p = %v, want < 0.01", row.PValue)
	}
	if !row.Significant {
		t.Error("fully separated samples should be significant at 0.05")
	}
	if row.PCorrected != row.PValue {
		t.Errorf("single-pair family must leave p unchanged: %v vs %v", row.PCorrected, row.PValue)
	}
}

func TestCompare_CorrectionAcrossFamily(t *testing.T) {
	c := New(0.05, metrics.CorrectionBonferroni)
	samples := map[string][]float64{
		"a": {1, 2, 3, 4, 5},
		"b": {6, 7, 8, 9, 10},
		"c": {11, 12, 13, 14, 15},
	}

	rows := c.Compare("m", "d", samples)
	for _, row := range rows {
		if !row.Testable {
			t.Fatalf("all pairs should be testable")
		}
		want := row.PValue * 3
		if want > 1 {
			want = 1
		}
		if row.PCorrected != want {
			t.Errorf("%s vs %s: corrected %v, want %v", row.GroupA, row.GroupB, row.PCorrected, want)
		}
	}
}

func TestCompare_AllTiedNotSignificant(t *testing.T) {
	c := New(0.05, metrics.CorrectionBH)
	samples := map[string][]float64{
		"a": {1, 1, 1},
		"b": {1, 1, 1},
	}

	rows := c.Compare("m", "d", samples)
	row := rows[0]
	if row.PValue != 1.0 {
		t.Errorf("identical constant samples: p = %v, want 1", row.PValue)
	}
	if row.Significant {
		t.Error("identical samples must not be significant")
	}
	if row.EffectSize != 0 || !row.EffectDefined {
		t.Errorf("delta = %v (defined=%v), want 0 defined", row.EffectSize, row.EffectDefined)
	}
	if row.Magnitude != metrics.MagnitudeNegligible {
		t.Errorf("magnitude = %s, want negligible", row.Magnitude)
	}
}

func TestCompare_Deterministic(t *testing.T) {
	c := New(0.05, metrics.CorrectionBH)
	samples := map[string][]float64{
		"x": {3.5, 1.25, 9.75, 2.5},
		"y": {4.25, 8.5, 0.5, 6.75},
		"z": {5.5, 2.25, 7.25, 3.75},
	}

	first := c.Compare("m", "d", samples)
	for trial := 0; trial < 5; trial++ {
		again := c.Compare("m", "d", samples)
		if len(again) != len(first) {
			t.Fatalf("row count changed between runs")
		}
		for i := range first {
			if first[i].GroupA != again[i].GroupA || first[i].GroupB != again[i].GroupB ||
				first[i].PValue != again[i].PValue || first[i].EffectSize != again[i].EffectSize {
				t.Fatalf("run %d row %d differs: %+v vs %+v", trial, i, first[i], again[i])
			}
		}
	}
}

func TestCompareProportions(t *testing.T) {
	c := New(0.05, metrics.CorrectionBH)

	t.Run("strong rate difference", func(t *testing.T) {
		a := binarySample(90, 10) // 90 merged of 100
		b := binarySample(10, 90)
		row := c.CompareProportions("merge_rate", "loop_type", "closed_loop", "open_loop", a, b)
		if row.Test != metrics.TestChiSquare {
			t.Fatalf("test = %s, want chi_square", row.Test)
		}
		if !row.Significant {
			t.Errorf("90%% vs 10%% merge rate should be significant, p=%v", row.PCorrected)
		}
		if row.StatsA == nil || row.StatsA.Mean != 0.9 {
			t.Errorf("group A mean should be the merge rate 0.9")
		}
	})

	t.Run("every record merged", func(t *testing.T) {
		a := binarySample(5, 0)
		b := binarySample(7, 0)
		row := c.CompareProportions("merge_rate", "loop_type", "closed_loop", "open_loop", a, b)
		if row.Status != metrics.StatusInsufficient {
			t.Errorf("degenerate outcome column should be insufficient, got %s", row.Status)
		}
		if row.Testable {
			t.Error("degenerate table must not be testable")
		}
	})

	t.Run("tiny group", func(t *testing.T) {
		row := c.CompareProportions("merge_rate", "loop_type", "a", "b", []float64{1}, []float64{0, 1, 1})
		if row.Status != metrics.StatusInsufficient {
			t.Errorf("single-observation group should be insufficient, got %s", row.Status)
		}
	})
}

// Helper functions

func indexRows(rows []metrics.ComparisonResult) map[string]metrics.ComparisonResult {
	out := make(map[string]metrics.ComparisonResult, len(rows))
	for _, r := range rows {
		out[r.GroupA+"|"+r.GroupB] = r
	}
	return out
}

func binarySample(ones, zeros int) []float64 {
	out := make([]float64, 0, ones+zeros)
	for i := 0; i < ones; i++ {
		out = append(out, 1)
	}
	for i := 0; i < zeros; i++ {
		out = append(out, 0)
	}
	return out
}
