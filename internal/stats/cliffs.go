package stats

import "math"

// Magnitude bands the absolute value of an effect size.
type Magnitude int

const (
	Negligible Magnitude = iota
	Small
	Medium
	Large
)

func (m Magnitude) String() string {
	switch m {
	case Negligible:
		return "negligible"
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return "unknown"
	}
}

// CliffsDeltaResult holds the ordinal effect size of a against b.
// Delta is in [-1, 1]; negative means a tends to be smaller than b.
type CliffsDeltaResult struct {
	Delta     float64
	Magnitude Magnitude
}

// CliffsDelta computes Cliff's delta: the difference between the probability
// that an observation from a exceeds one from b and the reverse.
// Returns ErrInsufficientSamples when either sample is empty.
func CliffsDelta(a, b []float64) (CliffsDeltaResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return CliffsDeltaResult{}, ErrInsufficientSamples
	}
	var gt, lt int
	for _, x := range a {
		for _, y := range b {
			switch {
			case x > y:
				gt++
			case x < y:
				lt++
			}
		}
	}
	delta := float64(gt-lt) / (float64(len(a)) * float64(len(b)))
	return CliffsDeltaResult{Delta: delta, Magnitude: deltaMagnitude(delta)}, nil
}

// deltaMagnitude applies the conventional |delta| thresholds
// (0.147 / 0.33 / 0.474).
func deltaMagnitude(delta float64) Magnitude {
	abs := math.Abs(delta)
	switch {
	case abs < 0.147:
		return Negligible
	case abs < 0.33:
		return Small
	case abs < 0.474:
		return Medium
	default:
		return Large
	}
}
