package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/prloop/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }
func bptr(v bool) *bool       { return &v }

func TestSplitPartitionsWithoutLoss(t *testing.T) {
	prs := []models.PullRequest{
		{ID: 1, ClosedLoop: bptr(true)},
		{ID: 2, ClosedLoop: bptr(false)},
		{ID: 3},
		{ID: 4, ClosedLoop: bptr(true)},
		{ID: 5},
	}

	yes, no, excluded := Split(prs, ByClosedLoop)

	assert.Len(t, yes, 2)
	assert.Len(t, no, 1)
	assert.Equal(t, 2, excluded)
	assert.Equal(t, len(prs), len(yes)+len(no)+excluded)

	assert.Equal(t, int64(1), yes[0].ID)
	assert.Equal(t, int64(4), yes[1].ID)
	assert.Equal(t, int64(2), no[0].ID)
}

func TestSplitByAIAuthorNeverExcludes(t *testing.T) {
	prs := []models.PullRequest{
		{ID: 1, AuthorType: models.AuthorAI},
		{ID: 2, AuthorType: models.AuthorHuman},
		{ID: 3, AuthorType: models.AuthorAI},
	}

	ai, human, excluded := Split(prs, ByAIAuthor)

	assert.Len(t, ai, 2)
	assert.Len(t, human, 1)
	assert.Equal(t, 0, excluded)
}

func TestSplitEmptyInput(t *testing.T) {
	yes, no, excluded := Split(nil, ByClosedLoop)

	assert.Empty(t, yes)
	assert.Empty(t, no)
	assert.Equal(t, 0, excluded)
}

func TestExtractorsSkipMissingValues(t *testing.T) {
	prs := []models.PullRequest{
		{ID: 1, ReviewDurationHours: fptr(2.5), NComments: iptr(3)},
		{ID: 2},
		{ID: 3, ReviewDurationHours: fptr(4.0)},
	}

	assert.Equal(t, []float64{2.5, 4.0}, Durations(prs))
	assert.Equal(t, []float64{3}, CommentCounts(prs))
	assert.Equal(t, []bool{false, false, false}, MergedFlags(prs))
}

func TestSummarizeCohort(t *testing.T) {
	prs := []models.PullRequest{
		{ID: 1, Merged: true, ReviewDurationHours: fptr(2), NComments: iptr(1), ReviewerType: models.ReviewerBot},
		{ID: 2, Merged: false, ReviewDurationHours: fptr(4), ReviewerType: models.ReviewerHuman},
		{ID: 3, Merged: true, ReviewDurationHours: fptr(6), NComments: iptr(3), ReviewerType: models.ReviewerBot},
	}

	got := SummarizeCohort("ai", prs)

	assert.Equal(t, "ai", got.Name)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 2, got.Merged)
	assert.InDelta(t, 2.0/3.0, got.MergeRate, 1e-9)
	assert.Equal(t, 3, got.Duration.Count)
	assert.InDelta(t, 4.0, got.Duration.Median, 1e-9)
	// Missing comment counts shrink the descriptive sample, not the cohort.
	assert.Equal(t, 2, got.Comments.Count)
	assert.Equal(t, 2, got.ReviewerTypes[models.ReviewerBot])
	assert.Equal(t, 1, got.ReviewerTypes[models.ReviewerHuman])
}

func TestSummarizeCohortEmpty(t *testing.T) {
	got := SummarizeCohort("closed_loop", nil)

	assert.Equal(t, 0, got.Count)
	assert.Equal(t, 0.0, got.MergeRate)
	assert.Equal(t, 0, got.Duration.Count)
}
