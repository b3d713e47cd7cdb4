package metrics

import "github.com/joescharf/prloop/internal/models"

// Cohort names for the closed-loop split.
const (
	CohortClosedLoop = "closed_loop"
	CohortOpenLoop   = "open_loop"
)

// RQ3Result answers "does the closed loop change outcomes?" over the
// AI-authored clean PRs. PRs whose closed-loop flag is absent are excluded
// from both cohorts and surfaced in UnknownLoop.
type RQ3Result struct {
	Total                int
	UnknownLoop          int
	ClosedLoopProportion float64 // closed / (closed + open); meaningless when both cohorts are empty
	Closed               CohortSummary
	Open                 CohortSummary
	Comparisons          []Comparison
}

// RQ3 splits the AI-authored clean PRs by closed-loop flag and compares
// review duration, comment count, and merge rate across the two loops.
func RQ3(aiPRs []models.PullRequest) *RQ3Result {
	closed, open, unknown := Split(aiPRs, ByClosedLoop)

	result := &RQ3Result{
		Total:       len(aiPRs),
		UnknownLoop: unknown,
		Closed:      SummarizeCohort(CohortClosedLoop, closed),
		Open:        SummarizeCohort(CohortOpenLoop, open),
	}
	if known := len(closed) + len(open); known > 0 {
		result.ClosedLoopProportion = float64(len(closed)) / float64(known)
	}

	result.Comparisons = []Comparison{
		CompareDistributions(MetricDuration,
			NamedSample{Name: CohortClosedLoop, Values: Durations(closed)},
			NamedSample{Name: CohortOpenLoop, Values: Durations(open)},
		),
		CompareDistributions(MetricComments,
			NamedSample{Name: CohortClosedLoop, Values: CommentCounts(closed)},
			NamedSample{Name: CohortOpenLoop, Values: CommentCounts(open)},
		),
		CompareRates(MetricMergeRate,
			NamedFlags{Name: CohortClosedLoop, Flags: MergedFlags(closed)},
			NamedFlags{Name: CohortOpenLoop, Flags: MergedFlags(open)},
		),
	}
	return result
}
