package metrics

import "github.com/joescharf/prloop/internal/models"

// RQ1Result answers "do AI-authored PRs fare differently than human-authored
// ones?" over the cleaned dataset.
type RQ1Result struct {
	Total       int
	AI          CohortSummary
	Human       CohortSummary
	Comparisons []Comparison
}

// RQ1 splits the cleaned dataset by author type and compares review
// duration, comment count, and merge rate across the two cohorts.
func RQ1(prs []models.PullRequest) *RQ1Result {
	ai, human, _ := Split(prs, ByAIAuthor)

	result := &RQ1Result{
		Total: len(prs),
		AI:    SummarizeCohort(string(models.AuthorAI), ai),
		Human: SummarizeCohort(string(models.AuthorHuman), human),
	}

	result.Comparisons = []Comparison{
		CompareDistributions(MetricDuration,
			NamedSample{Name: result.AI.Name, Values: Durations(ai)},
			NamedSample{Name: result.Human.Name, Values: Durations(human)},
		),
		CompareDistributions(MetricComments,
			NamedSample{Name: result.AI.Name, Values: CommentCounts(ai)},
			NamedSample{Name: result.Human.Name, Values: CommentCounts(human)},
		),
		CompareRates(MetricMergeRate,
			NamedFlags{Name: result.AI.Name, Flags: MergedFlags(ai)},
			NamedFlags{Name: result.Human.Name, Flags: MergedFlags(human)},
		),
	}
	return result
}

// SkippedComparisons counts the comparisons omitted for failed
// preconditions.
func SkippedComparisons(comparisons []Comparison) int {
	var n int
	for i := range comparisons {
		if comparisons[i].Skipped {
			n++
		}
	}
	return n
}
