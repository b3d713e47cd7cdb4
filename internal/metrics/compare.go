package metrics

import (
	"github.com/joescharf/prloop/internal/stats"
)

// Test names as reported in result tables.
const (
	TestMannWhitney = "Mann-Whitney U"
	TestChiSquare   = "Chi-square"
)

// Metric names as reported in result tables.
const (
	MetricDuration  = "review_duration_hours"
	MetricComments  = "n_comments"
	MetricMergeRate = "merge_rate"
)

// NamedSample is one cohort's observations of a continuous metric.
type NamedSample struct {
	Name   string
	Values []float64
}

// NamedFlags is one cohort's observations of a binary outcome.
type NamedFlags struct {
	Name  string
	Flags []bool
}

// Comparison is the write-once outcome of one metric compared across two
// cohorts. When a statistical precondition fails the test fields stay nil,
// Skipped is set, and SkipReason says why; the descriptives survive either
// way. For rate comparisons the descriptives summarize the 0/1 outcome
// indicator, so DescA.Mean is cohort A's rate.
type Comparison struct {
	Metric     string
	Test       string
	GroupA     string
	GroupB     string
	DescA      stats.Descriptive
	DescB      stats.Descriptive
	Statistic  *float64
	PValue     *float64
	DOF        *int // chi-square only
	Effect     *float64
	Magnitude  string
	Skipped    bool
	SkipReason string
}

// Significant reports whether the comparison ran and its p-value clears
// alpha.
func (c *Comparison) Significant(alpha float64) bool {
	return !c.Skipped && c.PValue != nil && *c.PValue < alpha
}

// CompareDistributions runs the two-sided Mann-Whitney U test plus Cliff's
// delta on a continuous metric. A failed precondition yields a skipped
// comparison, never fabricated numbers.
func CompareDistributions(metric string, a, b NamedSample) Comparison {
	cmp := Comparison{
		Metric: metric,
		Test:   TestMannWhitney,
		GroupA: a.Name,
		GroupB: b.Name,
		DescA:  stats.Describe(a.Values),
		DescB:  stats.Describe(b.Values),
	}

	mwu, err := stats.MannWhitneyU(a.Values, b.Values)
	if err != nil {
		cmp.Skipped = true
		cmp.SkipReason = err.Error()
		return cmp
	}
	u := mwu.U
	p := mwu.PValue
	cmp.Statistic = &u
	cmp.PValue = &p

	if cd, err := stats.CliffsDelta(a.Values, b.Values); err == nil {
		delta := cd.Delta
		cmp.Effect = &delta
		cmp.Magnitude = cd.Magnitude.String()
	}
	return cmp
}

// CompareRates runs the chi-square independence test on the cohort x outcome
// contingency table of a binary metric.
func CompareRates(metric string, a, b NamedFlags) Comparison {
	cmp := Comparison{
		Metric: metric,
		Test:   TestChiSquare,
		GroupA: a.Name,
		GroupB: b.Name,
		DescA:  stats.Describe(flagValues(a.Flags)),
		DescB:  stats.Describe(flagValues(b.Flags)),
	}

	table := [][]int64{flagCounts(a.Flags), flagCounts(b.Flags)}
	res, err := stats.ChiSquareIndependence(table)
	if err != nil {
		cmp.Skipped = true
		cmp.SkipReason = err.Error()
		return cmp
	}
	statistic := res.Statistic
	p := res.PValue
	dof := res.DOF
	cmp.Statistic = &statistic
	cmp.PValue = &p
	cmp.DOF = &dof
	return cmp
}

func flagValues(flags []bool) []float64 {
	values := make([]float64, len(flags))
	for i, f := range flags {
		if f {
			values[i] = 1
		}
	}
	return values
}

func flagCounts(flags []bool) []int64 {
	counts := make([]int64, 2)
	for _, f := range flags {
		if f {
			counts[0]++
		} else {
			counts[1]++
		}
	}
	return counts
}
