package stats

import (
	"math"
	"sort"
)

// MannWhitneyResult holds the two-sided Mann-Whitney U test outcome.
// U is the statistic of the first sample; U_a + U_b == len(a)*len(b).
type MannWhitneyResult struct {
	U      float64
	Z      float64
	PValue float64
}

// MannWhitneyU runs the two-sided Mann-Whitney U rank-sum test on two
// independent samples. Ties receive midranks; the p-value comes from the
// normal approximation with tie correction and a 0.5 continuity correction.
//
// Returns ErrInsufficientSamples when either sample is empty and
// ErrZeroVariance when every pooled observation is identical.
func MannWhitneyU(a, b []float64) (MannWhitneyResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return MannWhitneyResult{}, ErrInsufficientSamples
	}

	n1 := float64(len(a))
	n2 := float64(len(b))
	n := n1 + n2

	ranks, tieTerm := midranks(a, b)

	var r1 float64
	for i := range a {
		r1 += ranks[i]
	}
	u1 := r1 - n1*(n1+1)/2

	mu := n1 * n2 / 2
	variance := n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		return MannWhitneyResult{}, ErrZeroVariance
	}
	sigma := math.Sqrt(variance)

	// Continuity correction shrinks |U - mu| by 0.5.
	diff := u1 - mu
	var z float64
	switch {
	case diff > 0:
		z = (diff - 0.5) / sigma
	case diff < 0:
		z = (diff + 0.5) / sigma
	}

	p := 2 * (1 - normalCDF(math.Abs(z)))
	if p > 1 {
		p = 1
	}
	return MannWhitneyResult{U: u1, Z: z, PValue: p}, nil
}

// midranks ranks the pooled samples, assigning tied observations the average
// of the ranks they span. The returned slice is indexed by pooled position
// (a first, then b); the second value is the tie-correction term sum(t^3-t).
func midranks(a, b []float64) ([]float64, float64) {
	n := len(a) + len(b)
	type obs struct {
		v   float64
		idx int
	}
	pooled := make([]obs, 0, n)
	for i, v := range a {
		pooled = append(pooled, obs{v: v, idx: i})
	}
	for i, v := range b {
		pooled = append(pooled, obs{v: v, idx: len(a) + i})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].v < pooled[j].v })

	ranks := make([]float64, n)
	var tieTerm float64
	for i := 0; i < n; {
		j := i
		for j < n && pooled[j].v == pooled[i].v {
			j++
		}
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[pooled[k].idx] = mid
		}
		t := float64(j - i)
		tieTerm += t*t*t - t
		i = j
	}
	return ranks, tieTerm
}
