package store

import (
	"context"
	"time"

	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/stats"
)

// CleanPRFilter narrows queries over the cleaned pull-request dataset.
// Zero-valued fields match everything.
type CleanPRFilter struct {
	AuthorType   models.AuthorType
	ReviewerType models.ReviewerType
}

// ComparisonRecord is one stored comparison row of an analysis run. A
// skipped comparison keeps its descriptives but carries nil test fields and
// the reason it was omitted.
type ComparisonRecord struct {
	ID         string
	RunID      string
	Metric     string
	Test       string
	GroupA     string
	GroupB     string
	DescA      stats.Descriptive
	DescB      stats.Descriptive
	Statistic  *float64
	PValue     *float64
	Effect     *float64
	Magnitude  string
	Skipped    bool
	SkipReason string
	CreatedAt  time.Time
}

// WarehouseCounts summarizes dataset sizes for the status dashboard.
type WarehouseCounts struct {
	PullRequests      int64
	Comments          int64
	Reviews           int64
	CleanPullRequests int64
	AIPullRequests    int64
	CommentLabels     int64
	AnalysisRuns      int64
}

// Store defines the persistence interface for prloop.
type Store interface {
	// Raw collections. Ingest replaces a collection wholesale so reruns
	// stay idempotent.
	ReplacePullRequests(ctx context.Context, prs []models.PullRequest) (int64, error)
	ReplaceComments(ctx context.Context, comments []models.Comment) (int64, error)
	ReplaceReviews(ctx context.Context, reviews []models.Review) (int64, error)
	ListPullRequests(ctx context.Context) ([]models.PullRequest, error)
	ListComments(ctx context.Context) ([]models.Comment, error)
	ListReviews(ctx context.Context) ([]models.Review, error)

	// Derived datasets written by preprocess.
	ReplaceCleanPullRequests(ctx context.Context, prs []models.PullRequest) (int64, error)
	ListCleanPullRequests(ctx context.Context, filter CleanPRFilter) ([]models.PullRequest, error)
	ListAIComments(ctx context.Context) ([]models.Comment, error)
	ReplaceCommentLabels(ctx context.Context, labels []models.CommentLabel) (int64, error)
	ListCommentLabels(ctx context.Context) ([]models.CommentLabel, error)

	// Analysis bookkeeping.
	CreateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error
	FinishAnalysisRun(ctx context.Context, run *models.AnalysisRun) error
	ListAnalysisRuns(ctx context.Context, limit int) ([]*models.AnalysisRun, error)
	CreateComparison(ctx context.Context, rec *ComparisonRecord) error
	ListComparisons(ctx context.Context, runID string) ([]*ComparisonRecord, error)

	// Dashboard.
	Counts(ctx context.Context) (*WarehouseCounts, error)
	ReviewerTypeCounts(ctx context.Context) (map[models.ReviewerType]int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
