package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/taxonomy"
)

func strptr(s string) *string { return &s }

func TestClassify_Categories(t *testing.T) {
	c := New(taxonomy.Default())

	tests := []struct {
		text     string
		expected []models.Category
	}{
		// Single category
		{"There is a bug in this loop", []models.Category{models.CategoryCorrective}},
		{"Please run the linter, formatting is off", []models.Category{models.CategoryStyle}},
		{"This endpoint is missing authorization checks", []models.Category{models.CategorySecurity}},
		{"Could you add a unit test for the empty case?", []models.Category{models.CategoryTesting}},

		// Multiple categories are preserved, not collapsed
		{"This is broken and has a security vulnerability", []models.Category{models.CategoryCorrective, models.CategorySecurity}},
		{"Fix the indent and add a test case", []models.Category{models.CategoryCorrective, models.CategoryStyle, models.CategoryTesting}},

		// Nothing matched
		{"Merging this now", []models.Category{models.CategoryOther}},
		{"", []models.Category{models.CategoryOther}},

		// Case insensitivity
		{"SECURITY PROBLEM HERE", []models.Category{models.CategoryCorrective, models.CategorySecurity}},

		// Multi-word keywords match as a unit
		{"possible sql injection via the name parameter", []models.Category{models.CategorySecurity}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(strptr(tt.text))
			assert.Equal(t, tt.expected, got.Categories)
			assert.Equal(t, len(tt.expected) > 1, got.MultiCategory)
		})
	}
}

func TestClassify_CorrectiveAndSecurityFlagged(t *testing.T) {
	c := New(taxonomy.Default())

	// Texts hitting exactly one corrective and one security keyword.
	for _, text := range []string{
		"broken password handling",
		"this crash leaks the token",
		"wrong escape sequence used",
	} {
		got := c.Classify(strptr(text))
		assert.Equal(t, []models.Category{models.CategoryCorrective, models.CategorySecurity}, got.Categories, text)
		assert.True(t, got.MultiCategory, text)
	}
}

func TestClassify_Sentiment(t *testing.T) {
	c := New(taxonomy.Default())

	tests := []struct {
		text     string
		expected models.Sentiment
	}{
		{"lgtm, great work", models.SentimentPositive},
		{"this is wrong, bad approach", models.SentimentNegative},
		{"looks good to me", models.SentimentPositive},
		{"thanks, well done", models.SentimentPositive},
		{"I am worried about this, should not ship", models.SentimentNegative},

		// One positive and one negative keyword tie to neutral.
		{"good idea but wrong place", models.SentimentNeutral},
		// Zero hits on both sides is also a tie.
		{"renamed the variable", models.SentimentNeutral},
		{"", models.SentimentNeutral},

		// Case insensitivity
		{"LGTM", models.SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(strptr(tt.text))
			assert.Equal(t, tt.expected, got.Sentiment)
		})
	}
}

func TestClassify_NilBody(t *testing.T) {
	c := New(taxonomy.Default())

	got := c.Classify(nil)
	assert.Equal(t, []models.Category{models.CategoryOther}, got.Categories)
	assert.Equal(t, models.SentimentNeutral, got.Sentiment)
	assert.False(t, got.MultiCategory)
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(taxonomy.Default())
	text := strptr("broken auth, add tests, lgtm otherwise")

	first := c.Classify(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}

func TestClassify_CustomTaxonomy(t *testing.T) {
	tax := taxonomy.Taxonomy{
		Corrective: []string{"oops"},
		Style:      []string{"shed"},
		Security:   []string{"cve"},
		Testing:    []string{"flake"},
		Positive:   []string{"ship it"},
		Negative:   []string{"nack"},
	}
	c := New(tax)

	got := c.Classify(strptr("Oops, ship it anyway"))
	assert.Equal(t, []models.Category{models.CategoryCorrective}, got.Categories)
	assert.Equal(t, models.SentimentPositive, got.Sentiment)
}

func TestExpand(t *testing.T) {
	c := New(taxonomy.Default())
	comment := &models.Comment{ID: 7, PRID: 42, Body: strptr("broken and insecure: fix the auth")}

	r := c.Classify(comment.Body)
	require.Equal(t, []models.Category{models.CategoryCorrective, models.CategorySecurity}, r.Categories)

	labels := Expand(comment, r)
	require.Len(t, labels, 2)
	for _, l := range labels {
		assert.Equal(t, int64(7), l.CommentID)
		assert.Equal(t, int64(42), l.PRID)
		assert.Equal(t, r.Sentiment, l.Sentiment)
		assert.True(t, l.MultiCategory)
	}
	assert.Equal(t, models.CategoryCorrective, labels[0].Category)
	assert.Equal(t, models.CategorySecurity, labels[1].Category)
}

func TestExpand_SingleCategory(t *testing.T) {
	c := New(taxonomy.Default())
	comment := &models.Comment{ID: 1, PRID: 2}

	labels := Expand(comment, c.Classify(nil))
	require.Len(t, labels, 1)
	assert.Equal(t, models.CategoryOther, labels[0].Category)
	assert.False(t, labels[0].MultiCategory)
}
