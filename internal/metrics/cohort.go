// Package metrics derives the research-question results from the cleaned
// datasets: cohort splits, descriptive summaries, and the AI-vs-human and
// closed-loop-vs-open-loop comparisons.
package metrics

import (
	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/stats"
)

// Predicate assigns a PR to the yes or no cohort. ok=false excludes the PR
// from the split entirely (the caller reports exclusion counts).
type Predicate func(pr *models.PullRequest) (value, ok bool)

// ByClosedLoop splits on the closed-loop flag; PRs where the flag is absent
// are excluded, never defaulted.
func ByClosedLoop(pr *models.PullRequest) (bool, bool) {
	if pr.ClosedLoop == nil {
		return false, false
	}
	return *pr.ClosedLoop, true
}

// ByAIAuthor splits on the PR author type. Always decidable.
func ByAIAuthor(pr *models.PullRequest) (bool, bool) {
	return pr.IsAI(), true
}

// Split partitions prs into the yes and no cohorts of pred plus an excluded
// count. Every input PR lands in exactly one of the three.
func Split(prs []models.PullRequest, pred Predicate) (yes, no []models.PullRequest, excluded int) {
	for i := range prs {
		v, ok := pred(&prs[i])
		switch {
		case !ok:
			excluded++
		case v:
			yes = append(yes, prs[i])
		default:
			no = append(no, prs[i])
		}
	}
	return yes, no, excluded
}

// Durations extracts the present review durations of a cohort.
func Durations(prs []models.PullRequest) []float64 {
	var values []float64
	for i := range prs {
		if prs[i].ReviewDurationHours != nil {
			values = append(values, *prs[i].ReviewDurationHours)
		}
	}
	return values
}

// CommentCounts extracts the present comment counts of a cohort.
func CommentCounts(prs []models.PullRequest) []float64 {
	var values []float64
	for i := range prs {
		if prs[i].NComments != nil {
			values = append(values, float64(*prs[i].NComments))
		}
	}
	return values
}

// MergedFlags extracts the merged indicator of every PR in a cohort.
func MergedFlags(prs []models.PullRequest) []bool {
	flags := make([]bool, len(prs))
	for i := range prs {
		flags[i] = prs[i].Merged
	}
	return flags
}

// CohortSummary is the descriptive face of one cohort.
type CohortSummary struct {
	Name          string
	Count         int
	Merged        int
	MergeRate     float64 // fraction of the cohort merged; meaningless when Count == 0
	Duration      stats.Descriptive
	Comments      stats.Descriptive
	ReviewerTypes map[models.ReviewerType]int
}

// SummarizeCohort computes counts, merge rate, metric descriptives and the
// reviewer-type breakdown for one cohort.
func SummarizeCohort(name string, prs []models.PullRequest) CohortSummary {
	summary := CohortSummary{
		Name:          name,
		Count:         len(prs),
		Duration:      stats.Describe(Durations(prs)),
		Comments:      stats.Describe(CommentCounts(prs)),
		ReviewerTypes: make(map[models.ReviewerType]int),
	}
	for i := range prs {
		if prs[i].Merged {
			summary.Merged++
		}
		summary.ReviewerTypes[prs[i].ReviewerType]++
	}
	if summary.Count > 0 {
		summary.MergeRate = float64(summary.Merged) / float64(summary.Count)
	}
	return summary
}
