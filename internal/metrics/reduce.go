// Package metrics reduces Monte Carlo trial populations into summary
// statistics, percentiles, and histograms.
package metrics

import (
	"math"
	"sort"

	"commerce-whatif-lab/internal/domain"
)

// Summarize computes the full summary for one trial population using a
// single sorted copy. The input slice is not mutated.
func Summarize(trials []float64) domain.MetricSummary {
	n := len(trials)
	if n == 0 {
		return domain.MetricSummary{}
	}

	sorted := make([]float64, n)
	copy(sorted, trials)
	sort.Float64s(sorted)

	mean := computeMean(sorted)
	p5 := Percentile(sorted, 0.05)
	p95 := Percentile(sorted, 0.95)

	return domain.MetricSummary{
		Mean:         mean,
		Median:       Percentile(sorted, 0.50),
		StdDev:       sampleStdDev(sorted, mean),
		Min:          sorted[0],
		Max:          sorted[n-1],
		Percentile5:  p5,
		Percentile25: Percentile(sorted, 0.25),
		Percentile75: Percentile(sorted, 0.75),
		Percentile95: p95,
		Confidence90: [2]float64{p5, p95},
		Confidence95: [2]float64{Percentile(sorted, 0.025), Percentile(sorted, 0.975)},
	}
}

// Percentile returns percentile p (0.05 = 5th) with linear interpolation.
// sorted must be pre-sorted ascending.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// ProbabilityPositive returns the fraction of trials strictly above zero,
// scaled to percent.
func ProbabilityPositive(trials []float64) float64 {
	if len(trials) == 0 {
		return 0
	}
	positive := 0
	for _, v := range trials {
		if v > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(trials)) * 100
}

// NewHistogram bins a trial population into buckets equal-width buckets
// spanning [min, max]. Frequencies sum to len(trials). A degenerate
// population (all values identical) collapses into the first bucket.
func NewHistogram(trials []float64, buckets int) *domain.Histogram {
	if len(trials) == 0 || buckets <= 0 {
		return nil
	}

	lo, hi := trials[0], trials[0]
	for _, v := range trials {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	h := &domain.Histogram{
		Bins:        make([]float64, buckets+1),
		BinCenters:  make([]float64, buckets),
		Frequencies: make([]int, buckets),
	}

	width := (hi - lo) / float64(buckets)
	for i := 0; i <= buckets; i++ {
		h.Bins[i] = lo + float64(i)*width
	}
	h.Bins[buckets] = hi // avoid float drift on the top edge
	for i := 0; i < buckets; i++ {
		h.BinCenters[i] = (h.Bins[i] + h.Bins[i+1]) / 2
	}

	if width == 0 {
		// Degenerate population: a single non-empty bucket.
		h.Frequencies[0] = len(trials)
		return h
	}

	for _, v := range trials {
		idx := int((v - lo) / width)
		if idx >= buckets {
			idx = buckets - 1 // max value belongs to the last bucket
		}
		h.Frequencies[idx]++
	}
	return h
}

func computeMean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}
