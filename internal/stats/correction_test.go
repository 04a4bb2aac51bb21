package stats

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"prmetrics/domain/metrics"
)

func TestAdjustPValues_Bonferroni(t *testing.T) {
	raw := []float64{0.01, 0.04, 0.3}
	got := AdjustPValues(metrics.CorrectionBonferroni, raw)
	want := []float64{0.03, 0.12, 0.9}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("adjusted[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdjustPValues_BonferroniCapsAtOne(t *testing.T) {
	got := AdjustPValues(metrics.CorrectionBonferroni, []float64{0.4, 0.6})
	if got[0] != 0.8 || got[1] != 1.0 {
		t.Errorf("expected [0.8, 1.0], got %v", got)
	}
}

func TestAdjustPValues_BenjaminiHochberg(t *testing.T) {
	// Worked example: sorted p = 0.01, 0.02, 0.03, 0.04 with m=4 gives
	// q = 0.04 across the board (running minimum from the tail).
	raw := []float64{0.03, 0.01, 0.04, 0.02}
	got := AdjustPValues(metrics.CorrectionBH, raw)
	for i, q := range got {
		if math.Abs(q-0.04) > 1e-12 {
			t.Errorf("adjusted[%d] = %v, want 0.04", i, q)
		}
	}
}

func TestAdjustPValues_BHPreservesInputOrder(t *testing.T) {
	raw := []float64{0.2, 0.001, 0.05}
	got := AdjustPValues(metrics.CorrectionBH, raw)
	// 0.001 is the smallest raw p and must stay the smallest adjusted one,
	// at its original index.
	if got[1] > got[0] || got[1] > got[2] {
		t.Errorf("adjusted values lost input order correspondence: %v", got)
	}
}

func TestAdjustPValues_NeverBelowRaw(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for trial := 0; trial < 20; trial++ {
		raw := make([]float64, 1+rng.Intn(15))
		for i := range raw {
			raw[i] = rng.Float64()
		}
		for _, method := range []metrics.CorrectionMethod{metrics.CorrectionBH, metrics.CorrectionBonferroni} {
			got := AdjustPValues(method, raw)
			for i := range raw {
				if got[i] < raw[i]-1e-12 {
					t.Fatalf("%s adjusted[%d]=%v below raw %v", method, i, got[i], raw[i])
				}
				if got[i] > 1 {
					t.Fatalf("%s adjusted[%d]=%v above 1", method, i, got[i])
				}
			}
		}
	}
}

func TestAdjustPValues_BHMonotoneInSortedOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	raw := make([]float64, 12)
	for i := range raw {
		raw[i] = rng.Float64()
	}
	got := AdjustPValues(metrics.CorrectionBH, raw)

	type pair struct{ raw, adj float64 }
	pairs := make([]pair, len(raw))
	for i := range raw {
		pairs[i] = pair{raw[i], got[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].raw < pairs[j].raw })
	for i := 1; i < len(pairs); i++ {
		if pairs[i].adj < pairs[i-1].adj-1e-12 {
			t.Fatalf("BH adjusted values must be monotone in raw order: %v", pairs)
		}
	}
}

func TestAdjustPValues_SingleTest(t *testing.T) {
	for _, method := range []metrics.CorrectionMethod{metrics.CorrectionBH, metrics.CorrectionBonferroni} {
		got := AdjustPValues(method, []float64{0.03})
		if got[0] != 0.03 {
			t.Errorf("%s: single test must be unchanged, got %v", method, got[0])
		}
	}
}

func TestAdjustPValues_Empty(t *testing.T) {
	if got := AdjustPValues(metrics.CorrectionBH, nil); len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}
}
