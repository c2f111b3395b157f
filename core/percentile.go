// Package core implements the forecasting engines: percentile summaries,
// Monte Carlo how-many/when simulation, process behaviour charts and
// forecast predictability scoring.
package core

import (
	"sort"

	"github.com/flowsignal/flowcast/schema"
)

// Percentile returns the value at percentile p in [0,100] using linear
// interpolation between order statistics. It returns 0 for an empty sample
// set; callers that need to distinguish "no data" should check emptiness
// first or use Percentiles.
func Percentile(samples []float64, p int) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return interpolate(sorted, p)
}

// Percentiles returns one PercentileValue per requested percentile. An
// empty sample set yields an empty result, never an error.
func Percentiles(samples []float64, ps []int) []schema.PercentileValue {
	if len(samples) == 0 {
		return nil
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	result := make([]schema.PercentileValue, 0, len(ps))
	for _, p := range ps {
		result = append(result, schema.PercentileValue{Percentile: p, Value: interpolate(sorted, p)})
	}
	return result
}

// interpolate maps a percentile onto a sorted sample set. The rank
// p/100*(n-1) is split into its integer and fractional parts and the value
// is interpolated between the two surrounding order statistics.
func interpolate(sorted []float64, p int) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	rank := float64(p) / 100 * float64(n-1)
	lower := int(rank)
	frac := rank - float64(lower)
	if lower+1 >= n {
		return sorted[n-1]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
