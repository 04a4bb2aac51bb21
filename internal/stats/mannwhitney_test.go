package stats

import (
	"math"
	"math/rand"
	"testing"
)

func TestMannWhitneyU_ExactDisjointSamples(t *testing.T) {
	// Fully separated tie-free samples of size 5: U1 = 0,
	// exact two-sided p = 2 * 1/252.
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{6, 7, 8, 9, 10}

	res, ok := MannWhitneyU(a, b)
	if !ok {
		t.Fatal("expected testable pair")
	}
	if res.Method != "exact" {
		t.Errorf("expected exact method, got %s", res.Method)
	}
	if res.U != 0 {
		t.Errorf("expected U=0, got %v", res.U)
	}
	want := 2.0 / 252.0
	if math.Abs(res.P-want) > 1e-12 {
		t.Errorf("expected p=%v, got %v", want, res.P)
	}
	if res.P >= 0.01 {
		t.Errorf("expected p < 0.01, got %v", res.P)
	}
}

func TestMannWhitneyU_AllTiedIsNotSignificant(t *testing.T) {
	a := []float64{1, 1, 1}
	b := []float64{1, 1, 1}

	res, ok := MannWhitneyU(a, b)
	if !ok {
		t.Fatal("expected testable pair")
	}
	if res.Method != "normal" {
		t.Errorf("ties must force the normal path, got %s", res.Method)
	}
	if res.P != 1.0 {
		t.Errorf("fully tied samples must give p=1, got %v", res.P)
	}
}

func TestMannWhitneyU_TooSmall(t *testing.T) {
	if _, ok := MannWhitneyU([]float64{5}, []float64{1, 2, 3}); ok {
		t.Error("single observation must not be testable")
	}
	if _, ok := MannWhitneyU([]float64{1, 2}, nil); ok {
		t.Error("empty sample must not be testable")
	}
}

func TestMannWhitneyU_OrderInvariance(t *testing.T) {
	a := []float64{3.2, 1.1, 9.4, 2.2, 5.5, 7.7}
	b := []float64{4.4, 8.8, 0.5, 6.6, 2.9}
	shuffledA := []float64{9.4, 2.2, 1.1, 7.7, 3.2, 5.5}
	shuffledB := []float64{0.5, 6.6, 4.4, 2.9, 8.8}

	r1, _ := MannWhitneyU(a, b)
	r2, _ := MannWhitneyU(shuffledA, shuffledB)
	if r1.P != r2.P || r1.U != r2.U {
		t.Errorf("p-value must not depend on observation order: %+v vs %+v", r1, r2)
	}
}

func TestMannWhitneyU_SymmetricSamplesCentered(t *testing.T) {
	// Same distribution both sides: U should sit near n1*n2/2 and p near 1.
	a := []float64{1, 3, 5, 7}
	b := []float64{2, 4, 6, 8}

	res, ok := MannWhitneyU(a, b)
	if !ok {
		t.Fatal("expected testable pair")
	}
	if res.P < 0.5 {
		t.Errorf("interleaved samples should not look significant, p=%v", res.P)
	}
}

func TestMannWhitneyU_NormalPathLargeSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := make([]float64, 40)
	b := make([]float64, 40)
	for i := range a {
		a[i] = rng.NormFloat64()
		b[i] = rng.NormFloat64() + 2.0 // clearly shifted
	}

	res, ok := MannWhitneyU(a, b)
	if !ok {
		t.Fatal("expected testable pair")
	}
	if res.Method != "normal" {
		t.Errorf("samples beyond the exact limit must use the normal path, got %s", res.Method)
	}
	if res.P > 0.001 {
		t.Errorf("a two-sigma shift over n=40 should be detected, p=%v", res.P)
	}
	if res.P < 0 || res.P > 1 {
		t.Errorf("p out of range: %v", res.P)
	}
}

func TestMannWhitneyU_ExactMatchesNormalApproximately(t *testing.T) {
	// For moderate tie-free samples the exact and normal answers should be
	// close; this guards the exact enumeration against off-by-one errors.
	a := []float64{1.5, 2.5, 9.5, 4.5, 6.5, 3.25, 8.75}
	b := []float64{0.5, 5.5, 7.5, 2.75, 6.25, 1.25}

	res, ok := MannWhitneyU(a, b)
	if !ok {
		t.Fatal("expected testable pair")
	}
	if res.Method != "exact" {
		t.Fatalf("expected exact method for n=7,6 without ties, got %s", res.Method)
	}

	normalP := normalApproxP(res.U, len(a), len(b))
	if math.Abs(res.P-normalP) > 0.08 {
		t.Errorf("exact p=%v too far from normal approximation %v", res.P, normalP)
	}
}

func TestUCountTable(t *testing.T) {
	// n1=2, n2=2: C(4,2)=6 arrangements over U in 0..4 with counts 1,1,2,1,1.
	counts := uCountTable(2, 2)
	want := []float64{1, 1, 2, 1, 1}
	if len(counts) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(counts))
	}
	for u, c := range want {
		if counts[u] != c {
			t.Errorf("count[U=%d] = %v, want %v", u, counts[u], c)
		}
	}
}

// Helper functions

func normalApproxP(u1 float64, n1, n2 int) float64 {
	mu := float64(n1) * float64(n2) / 2
	nTot := float64(n1 + n2)
	variance := float64(n1) * float64(n2) / 12 * (nTot + 1)
	z := (math.Abs(u1-mu) - 0.5) / math.Sqrt(variance)
	if z < 0 {
		z = 0
	}
	return 2 * (1 - 0.5*(1+math.Erf(z/math.Sqrt2)))
}
