package stats

import (
	"math"
	"sort"
)

// Descriptive is a five-number-plus-mean summary of one metric in one cohort.
// A zero Descriptive (Count == 0) means the cohort had no usable values;
// formatters render it as "n/a" rather than zeros.
type Descriptive struct {
	Count  int
	Mean   float64
	Median float64
	Std    float64
	Q25    float64
	Q75    float64
}

// Describe summarizes values. Callers pass already-filtered observations;
// missing measurements never reach this function. The input is not mutated.
//
// Median and quartiles interpolate linearly at q*(n-1), and Std is the
// sample standard deviation (zero when n < 2).
func Describe(values []float64) Descriptive {
	n := len(values)
	if n == 0 {
		return Descriptive{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var std float64
	if n > 1 {
		var ss float64
		for _, v := range sorted {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	return Descriptive{
		Count:  n,
		Mean:   mean,
		Median: quantile(sorted, 0.5),
		Std:    std,
		Q25:    quantile(sorted, 0.25),
		Q75:    quantile(sorted, 0.75),
	}
}

// quantile computes the q-th quantile of a sorted slice by linear
// interpolation at position q*(n-1).
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
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
