package metrics

import (
	"sort"

	"github.com/joescharf/prloop/internal/models"
)

// CategoryStat aggregates one category over the classified comments.
// Percent is the share of comments carrying the category; because comments
// can carry several categories the percents may sum past 100.
type CategoryStat struct {
	Category   models.Category
	Count      int
	Percent    float64 // fraction of comments, not of labels
	Sentiments map[models.Sentiment]int
}

// PRCommentCount is the per-PR comment volume joined with the merge outcome.
type PRCommentCount struct {
	PRID     int64
	Comments int
	Merged   bool
}

// RQ2Result answers "what do reviewers say about AI-authored PRs?": category
// and sentiment distributions of the classified comments plus per-PR volume.
type RQ2Result struct {
	TotalComments    int
	UniquePRs        int
	AvgCommentsPerPR float64
	MergeRate        float64 // fraction of commented PRs merged; meaningless when UniquePRs == 0
	MultiCategory    int     // comments carrying more than one category
	Sentiments       map[models.Sentiment]int
	Categories       []CategoryStat
	CommentsPerPR    []PRCommentCount
}

// RQ2 aggregates the classification fan-out over the comments on AI-authored
// clean PRs. labels is the expanded per-category rows; aiPRs supplies the
// merge outcomes for the per-PR join.
func RQ2(labels []models.CommentLabel, aiPRs []models.PullRequest) *RQ2Result {
	result := &RQ2Result{
		Sentiments: make(map[models.Sentiment]int),
	}

	merged := make(map[int64]bool, len(aiPRs))
	for i := range aiPRs {
		merged[aiPRs[i].ID] = aiPRs[i].Merged
	}

	// Collapse the fan-out back to distinct comments for the totals;
	// category counts stay label-level.
	type commentKey struct {
		sentiment models.Sentiment
		prID      int64
		multi     bool
	}
	seen := make(map[int64]commentKey)
	categoryCounts := make(map[models.Category]int)
	categorySentiments := make(map[models.Category]map[models.Sentiment]int)

	for i := range labels {
		l := &labels[i]
		categoryCounts[l.Category]++
		if categorySentiments[l.Category] == nil {
			categorySentiments[l.Category] = make(map[models.Sentiment]int)
		}
		categorySentiments[l.Category][l.Sentiment]++
		if _, ok := seen[l.CommentID]; !ok {
			seen[l.CommentID] = commentKey{sentiment: l.Sentiment, prID: l.PRID, multi: l.MultiCategory}
		}
	}

	perPR := make(map[int64]int)
	for _, key := range seen {
		result.Sentiments[key.sentiment]++
		if key.multi {
			result.MultiCategory++
		}
		perPR[key.prID]++
	}

	result.TotalComments = len(seen)
	result.UniquePRs = len(perPR)
	if result.UniquePRs > 0 {
		result.AvgCommentsPerPR = float64(result.TotalComments) / float64(result.UniquePRs)
	}

	var mergedPRs int
	for prID := range perPR {
		if merged[prID] {
			mergedPRs++
		}
	}
	if result.UniquePRs > 0 {
		result.MergeRate = float64(mergedPRs) / float64(result.UniquePRs)
	}

	for _, category := range models.Categories() {
		count := categoryCounts[category]
		stat := CategoryStat{
			Category:   category,
			Count:      count,
			Sentiments: categorySentiments[category],
		}
		if stat.Sentiments == nil {
			stat.Sentiments = make(map[models.Sentiment]int)
		}
		if result.TotalComments > 0 {
			stat.Percent = float64(count) / float64(result.TotalComments)
		}
		result.Categories = append(result.Categories, stat)
	}

	for prID, count := range perPR {
		result.CommentsPerPR = append(result.CommentsPerPR, PRCommentCount{
			PRID:     prID,
			Comments: count,
			Merged:   merged[prID],
		})
	}
	sort.Slice(result.CommentsPerPR, func(i, j int) bool {
		return result.CommentsPerPR[i].PRID < result.CommentsPerPR[j].PRID
	})

	return result
}
