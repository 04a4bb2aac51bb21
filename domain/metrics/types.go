package metrics

import (
	"fmt"
	"sort"
)

// ============================================================================
// METRIC SPECIFICATIONS
// ============================================================================

// Derivation defines how a metric value is computed from a record before
// samples are formed.
type Derivation string

const (
	DeriveIdentity   Derivation = "identity"   // value taken as-is from the source column
	DeriveRate       Derivation = "rate"       // source / denominator, per record
	DeriveNormalized Derivation = "normalized" // source / fixed scale (e.g. time window)
)

// MetricSpec declares a metric: its name, its source column and its
// derivation rule. Defined once per RQ driver, never mutated during a run.
type MetricSpec struct {
	Name         string
	SourceColumn string
	Derivation   Derivation
	DenomColumn  string  // required for DeriveRate
	Scale        float64 // required for DeriveNormalized, must be non-zero
}

// Validate checks that the spec's derivation rule is complete.
func (m MetricSpec) Validate() error {
	if m.Name == "" || m.SourceColumn == "" {
		return fmt.Errorf("metric spec requires name and source column")
	}
	switch m.Derivation {
	case DeriveIdentity:
	case DeriveRate:
		if m.DenomColumn == "" {
			return fmt.Errorf("metric %q: rate derivation requires a denominator column", m.Name)
		}
	case DeriveNormalized:
		if m.Scale == 0 {
			return fmt.Errorf("metric %q: normalized derivation requires a non-zero scale", m.Name)
		}
	default:
		return fmt.Errorf("metric %q: unknown derivation %q", m.Name, m.Derivation)
	}
	return nil
}

// ============================================================================
// STATISTICAL RESULT PRIMITIVES
// ============================================================================

// DescriptiveStats summarizes one group's sample. All fields except Count are
// meaningless when Count is zero; callers must check Count first.
type DescriptiveStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
}

// Magnitude is the qualitative label for a Cliff's delta effect size,
// classified by the standard thresholds (0.147 / 0.33 / 0.474).
type Magnitude string

const (
	MagnitudeUndefined  Magnitude = "undefined"
	MagnitudeNegligible Magnitude = "negligible"
	MagnitudeSmall      Magnitude = "small"
	MagnitudeMedium     Magnitude = "medium"
	MagnitudeLarge      Magnitude = "large"
)

// TestName identifies the significance test behind a comparison row.
type TestName string

const (
	TestMannWhitney TestName = "mann_whitney"
	TestChiSquare   TestName = "chi_square"
	TestNone        TestName = "none"
)

// CorrectionMethod selects the multiple-comparison correction applied across
// a family of tests.
type CorrectionMethod string

const (
	CorrectionBH         CorrectionMethod = "bh"
	CorrectionBonferroni CorrectionMethod = "bonferroni"
)

// Status flags degraded comparison rows. Degraded rows stay in the table:
// a pair with too little data is recorded, never silently dropped.
type Status string

const (
	StatusOK           Status = "ok"
	StatusInsufficient Status = "insufficient"
)

// ============================================================================
// COMPARISON RESULTS
// ============================================================================

// ComparisonResult is one row per (metric, dimension, group A, group B).
// GroupA < GroupB lexically, always.
type ComparisonResult struct {
	Metric    string `json:"metric"`
	Dimension string `json:"dimension"`
	GroupA    string `json:"group_a"`
	GroupB    string `json:"group_b"`

	NA int `json:"n_a"`
	NB int `json:"n_b"`

	StatsA *DescriptiveStats `json:"stats_a,omitempty"` // nil when group A is empty
	StatsB *DescriptiveStats `json:"stats_b,omitempty"`

	EffectSize    float64   `json:"effect_size"`
	EffectDefined bool      `json:"effect_defined"` // false => effect is "undefined", not zero
	Magnitude     Magnitude `json:"magnitude"`

	Test        TestName `json:"test"`
	Statistic   float64  `json:"statistic"`
	PValue      float64  `json:"p_value"`
	PCorrected  float64  `json:"p_corrected"`
	Testable    bool     `json:"testable"` // false when either group has < 2 observations
	Significant bool     `json:"significant"`

	Status Status `json:"status"`
}

// ResultTable is the ordered collection of comparison rows for one research
// question. Sort order is deterministic so identical input reproduces
// byte-identical output downstream.
type ResultTable struct {
	RQ         string             `json:"rq"`
	Alpha      float64            `json:"alpha"`
	Correction CorrectionMethod   `json:"correction"`
	Rows       []ComparisonResult `json:"rows"`
}

// Sort orders rows by metric name, then dimension, then group-pair lexical
// order, independent of input row order.
func (t *ResultTable) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		if a.Dimension != b.Dimension {
			return a.Dimension < b.Dimension
		}
		if a.GroupA != b.GroupA {
			return a.GroupA < b.GroupA
		}
		return a.GroupB < b.GroupB
	})
}

// SupplementaryTable carries RQ-specific distribution output (category
// counts, sentiment breakdowns, run summaries) as pre-formatted rows. The
// producing driver is responsible for deterministic row order.
type SupplementaryTable struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}
