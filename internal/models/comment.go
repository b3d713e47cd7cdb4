package models

// Category is a review-comment category label. Categories are not mutually
// exclusive: one comment may carry several.
type Category string

const (
	CategoryCorrective Category = "corrective"
	CategoryStyle      Category = "style"
	CategorySecurity   Category = "security"
	CategoryTesting    Category = "testing"
	CategoryOther      Category = "other"
)

// Categories lists all category labels in reporting order.
func Categories() []Category {
	return []Category{CategoryCorrective, CategoryStyle, CategorySecurity, CategoryTesting, CategoryOther}
}

// Sentiment is the keyword-derived tone of a review comment.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiments lists all sentiment labels in reporting order.
func Sentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
}

// Comment is one review comment on a pull request. Author and Body are nil
// when the source column was absent or the cell empty.
type Comment struct {
	ID     int64
	PRID   int64
	Author *string
	Body   *string
}

// CommentLabel is one expanded classification row: a comment carrying N
// categories contributes N labels, all sharing the comment's sentiment and
// MultiCategory flag. The fan-out makes per-category aggregation a plain
// group-by downstream.
type CommentLabel struct {
	CommentID     int64
	PRID          int64
	Category      Category
	Sentiment     Sentiment
	MultiCategory bool
}
