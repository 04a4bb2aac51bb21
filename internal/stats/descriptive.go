package stats

import (
	"math"
	"sort"

	"prmetrics/domain/metrics"

	mstats "github.com/montanaflynn/stats"
)

// Describe computes descriptive statistics over a sample. Returns ok=false
// for an empty sample; callers must check it before consuming any field.
// Order-independent and side-effect free: the input slice is not modified.
func Describe(sample []float64) (metrics.DescriptiveStats, bool) {
	if len(sample) == 0 {
		return metrics.DescriptiveStats{}, false
	}

	data := make([]float64, len(sample))
	copy(data, sample)
	sort.Float64s(data)

	mean, _ := mstats.Mean(data)
	median, _ := mstats.Median(data)

	// Sample (n-1) standard deviation; zero for a single observation.
	stdDev := 0.0
	if len(data) > 1 {
		stdDev, _ = mstats.StandardDeviationSample(data)
	}

	// Quartiles by linear interpolation between order statistics. The
	// library percentile errors out below n=4, and small groups must still
	// get descriptives.
	q1 := quantile(data, 0.25)
	q3 := quantile(data, 0.75)

	d := metrics.DescriptiveStats{
		Count:  len(data),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
	}
	if math.IsNaN(d.Mean) || math.IsNaN(d.Median) {
		return metrics.DescriptiveStats{}, false
	}
	return d, true
}

// quantile interpolates the q-th quantile of sorted data.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ValidSample filters a raw value slice down to finite observations. The
// preprocessing contract marks missingness explicitly upstream, but derived
// metrics can still produce non-finite values and those never enter a sample.
func ValidSample(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
