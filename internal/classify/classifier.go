// Package classify maps review-comment text to category labels and a
// sentiment label using case-insensitive keyword matching against an
// injected taxonomy. Classification is a pure function: the same text always
// yields the same result.
package classify

import (
	"strings"

	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/taxonomy"
)

// Classifier labels comments against one fixed taxonomy.
type Classifier struct {
	tax taxonomy.Taxonomy
}

// New returns a Classifier for the given taxonomy.
func New(tax taxonomy.Taxonomy) *Classifier {
	return &Classifier{tax: tax.Normalized()}
}

// Result is the classification of a single comment.
type Result struct {
	Categories    []models.Category // non-empty; "other" when nothing matched
	Sentiment     models.Sentiment
	MultiCategory bool
}

// Classify labels one comment body. A nil body carries no signal and
// classifies as {other}/neutral.
func (c *Classifier) Classify(body *string) Result {
	if body == nil {
		return Result{Categories: []models.Category{models.CategoryOther}, Sentiment: models.SentimentNeutral}
	}

	lower := strings.ToLower(*body)

	var categories []models.Category
	if matchesAny(lower, c.tax.Corrective) {
		categories = append(categories, models.CategoryCorrective)
	}
	if matchesAny(lower, c.tax.Style) {
		categories = append(categories, models.CategoryStyle)
	}
	if matchesAny(lower, c.tax.Security) {
		categories = append(categories, models.CategorySecurity)
	}
	if matchesAny(lower, c.tax.Testing) {
		categories = append(categories, models.CategoryTesting)
	}
	if len(categories) == 0 {
		categories = append(categories, models.CategoryOther)
	}

	return Result{
		Categories:    categories,
		Sentiment:     c.sentiment(lower),
		MultiCategory: len(categories) > 1,
	}
}

// sentiment counts how many distinct positive and negative keywords occur in
// the text (multi-word phrases match as a unit) and compares the two tallies.
// Ties, including zero hits on both sides, are neutral.
func (c *Classifier) sentiment(lower string) models.Sentiment {
	positive := countHits(lower, c.tax.Positive)
	negative := countHits(lower, c.tax.Negative)

	switch {
	case positive > negative:
		return models.SentimentPositive
	case negative > positive:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Expand fans a classified comment out to one label row per category. All
// rows share the comment's sentiment and multi-category flag so that
// per-category aggregates reduce to a plain group-by.
func Expand(comment *models.Comment, r Result) []models.CommentLabel {
	labels := make([]models.CommentLabel, 0, len(r.Categories))
	for _, cat := range r.Categories {
		labels = append(labels, models.CommentLabel{
			CommentID:     comment.ID,
			PRID:          comment.PRID,
			Category:      cat,
			Sentiment:     r.Sentiment,
			MultiCategory: r.MultiCategory,
		})
	}
	return labels
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func countHits(lower string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}
