package report

import (
	"fmt"
	"strconv"

	"github.com/joescharf/prloop/internal/stats"
)

// NA marks a cell with no value: an empty sample, a skipped test, or a
// statistic the test does not produce. Absent cells are always marked, never
// left blank.
const NA = "n/a"

// Num renders a measured value at full precision.
func Num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Fixed renders a value at the two-decimal grain of the summary tables.
func Fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Int renders a count.
func Int(v int) string {
	return strconv.Itoa(v)
}

// Percent renders a 0..1 fraction as a percentage.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// PValue renders a p-value, NA when the test was skipped.
func PValue(p *float64) string {
	if p == nil {
		return NA
	}
	return strconv.FormatFloat(*p, 'f', 4, 64)
}

// Effect renders an effect size with its magnitude band, NA when the test
// was skipped or produces no effect size.
func Effect(effect *float64, magnitude string) string {
	if effect == nil {
		return NA
	}
	if magnitude == "" {
		return strconv.FormatFloat(*effect, 'f', 3, 64)
	}
	return fmt.Sprintf("%.3f (%s)", *effect, magnitude)
}

// Optional renders an optional measurement at full precision.
func Optional(v *float64) string {
	if v == nil {
		return NA
	}
	return Num(*v)
}

// Stat renders one descriptive statistic, NA for an empty sample.
func Stat(v float64, count int) string {
	if count == 0 {
		return NA
	}
	return Fixed(v)
}

// Rate renders the mean of a 0/1 outcome indicator as a percentage, NA for
// an empty cohort.
func Rate(d stats.Descriptive) string {
	if d.Count == 0 {
		return NA
	}
	return Percent(d.Mean)
}
