package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/prloop/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors when pipeline stages overlap.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// boolPtrToInt converts an optional bool to 0/1 or NULL.
func boolPtrToInt(b *bool) any {
	if b == nil {
		return nil
	}
	return boolToInt(*b)
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

func nullBool(v sql.NullInt64) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Int64 != 0
	return &b
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Raw collections ---

func (s *SQLiteStore) ReplacePullRequests(ctx context.Context, prs []models.PullRequest) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pull_requests"); err != nil {
		return 0, fmt.Errorf("clear pull_requests: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO pull_requests (id, author_type, merged, review_duration_hours, n_comments, closed_loop)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range prs {
		pr := &prs[i]
		if _, err := stmt.ExecContext(ctx,
			pr.ID, string(pr.AuthorType), boolToInt(pr.Merged),
			pr.ReviewDurationHours, pr.NComments, boolPtrToInt(pr.ClosedLoop),
		); err != nil {
			return 0, fmt.Errorf("insert pull request %d: %w", pr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return int64(len(prs)), nil
}

func (s *SQLiteStore) ReplaceComments(ctx context.Context, comments []models.Comment) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments"); err != nil {
		return 0, fmt.Errorf("clear comments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO comments (id, pr_id, author, body) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range comments {
		c := &comments[i]
		if _, err := stmt.ExecContext(ctx, c.ID, c.PRID, c.Author, c.Body); err != nil {
			return 0, fmt.Errorf("insert comment %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return int64(len(comments)), nil
}

func (s *SQLiteStore) ReplaceReviews(ctx context.Context, reviews []models.Review) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews"); err != nil {
		return 0, fmt.Errorf("clear reviews: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO reviews (id, pr_id, author, state) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range reviews {
		r := &reviews[i]
		if _, err := stmt.ExecContext(ctx, r.ID, r.PRID, r.Author, r.State); err != nil {
			return 0, fmt.Errorf("insert review %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return int64(len(reviews)), nil
}

func (s *SQLiteStore) ListPullRequests(ctx context.Context) ([]models.PullRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author_type, merged, review_duration_hours, n_comments, closed_loop
		FROM pull_requests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prs []models.PullRequest
	for rows.Next() {
		var pr models.PullRequest
		var authorType string
		var merged int
		var duration sql.NullFloat64
		var nComments, closedLoop sql.NullInt64

		if err := rows.Scan(&pr.ID, &authorType, &merged, &duration, &nComments, &closedLoop); err != nil {
			return nil, fmt.Errorf("scan pull request: %w", err)
		}
		pr.AuthorType = models.AuthorType(authorType)
		pr.Merged = merged != 0
		pr.ReviewDurationHours = nullFloat(duration)
		pr.NComments = nullInt(nComments)
		pr.ClosedLoop = nullBool(closedLoop)
		prs = append(prs, pr)
	}
	return prs, rows.Err()
}

func (s *SQLiteStore) ListComments(ctx context.Context) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, pr_id, author, body FROM comments ORDER BY pr_id, id")
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanComments(rows)
}

func (s *SQLiteStore) ListReviews(ctx context.Context) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, pr_id, author, state FROM reviews ORDER BY pr_id, id")
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		var author, state sql.NullString
		if err := rows.Scan(&r.ID, &r.PRID, &author, &state); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.Author = nullString(author)
		r.State = nullString(state)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// --- Derived datasets ---

func (s *SQLiteStore) ReplaceCleanPullRequests(ctx context.Context, prs []models.PullRequest) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pr_clean"); err != nil {
		return 0, fmt.Errorf("clear pr_clean: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pr_clean (id, author_type, merged, review_duration_hours, n_comments, closed_loop, status, reviewer_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range prs {
		pr := &prs[i]
		if pr.ReviewDurationHours == nil {
			return 0, fmt.Errorf("clean pull request %d has no review duration", pr.ID)
		}
		if _, err := stmt.ExecContext(ctx,
			pr.ID, string(pr.AuthorType), boolToInt(pr.Merged),
			*pr.ReviewDurationHours, pr.NComments, boolPtrToInt(pr.ClosedLoop),
			string(pr.Status), string(pr.ReviewerType),
		); err != nil {
			return 0, fmt.Errorf("insert clean pull request %d: %w", pr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return int64(len(prs)), nil
}

func (s *SQLiteStore) ListCleanPullRequests(ctx context.Context, filter CleanPRFilter) ([]models.PullRequest, error) {
	query := `SELECT id, author_type, merged, review_duration_hours, n_comments, closed_loop, status, reviewer_type
		FROM pr_clean`
	var conditions []string
	var args []any

	if filter.AuthorType != "" {
		conditions = append(conditions, "author_type = ?")
		args = append(args, string(filter.AuthorType))
	}
	if filter.ReviewerType != "" {
		conditions = append(conditions, "reviewer_type = ?")
		args = append(args, string(filter.ReviewerType))
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clean pull requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prs []models.PullRequest
	for rows.Next() {
		var pr models.PullRequest
		var authorType, status, reviewerType string
		var merged int
		var duration float64
		var nComments, closedLoop sql.NullInt64

		if err := rows.Scan(&pr.ID, &authorType, &merged, &duration, &nComments, &closedLoop, &status, &reviewerType); err != nil {
			return nil, fmt.Errorf("scan clean pull request: %w", err)
		}
		pr.AuthorType = models.AuthorType(authorType)
		pr.Merged = merged != 0
		pr.ReviewDurationHours = &duration
		pr.NComments = nullInt(nComments)
		pr.ClosedLoop = nullBool(closedLoop)
		pr.Status = models.PRStatus(status)
		pr.ReviewerType = models.ReviewerType(reviewerType)
		prs = append(prs, pr)
	}
	return prs, rows.Err()
}

func (s *SQLiteStore) ListAIComments(ctx context.Context) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.pr_id, c.author, c.body
		FROM comments c
		JOIN pr_clean p ON p.id = c.pr_id
		WHERE p.author_type = ?
		ORDER BY c.pr_id, c.id`, string(models.AuthorAI))
	if err != nil {
		return nil, fmt.Errorf("list ai comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanComments(rows)
}

func scanComments(rows *sql.Rows) ([]models.Comment, error) {
	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		var author, body sql.NullString
		if err := rows.Scan(&c.ID, &c.PRID, &author, &body); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Author = nullString(author)
		c.Body = nullString(body)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *SQLiteStore) ReplaceCommentLabels(ctx context.Context, labels []models.CommentLabel) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM comment_labels"); err != nil {
		return 0, fmt.Errorf("clear comment_labels: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comment_labels (comment_id, pr_id, category, sentiment, multi_category)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range labels {
		l := &labels[i]
		if _, err := stmt.ExecContext(ctx,
			l.CommentID, l.PRID, string(l.Category), string(l.Sentiment), boolToInt(l.MultiCategory),
		); err != nil {
			return 0, fmt.Errorf("insert comment label %d/%s: %w", l.CommentID, l.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return int64(len(labels)), nil
}

func (s *SQLiteStore) ListCommentLabels(ctx context.Context) ([]models.CommentLabel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT comment_id, pr_id, category, sentiment, multi_category
		FROM comment_labels ORDER BY pr_id, comment_id, category`)
	if err != nil {
		return nil, fmt.Errorf("list comment labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []models.CommentLabel
	for rows.Next() {
		var l models.CommentLabel
		var category, sentiment string
		var multi int
		if err := rows.Scan(&l.CommentID, &l.PRID, &category, &sentiment, &multi); err != nil {
			return nil, fmt.Errorf("scan comment label: %w", err)
		}
		l.Category = models.Category(category)
		l.Sentiment = models.Sentiment(sentiment)
		l.MultiCategory = multi != 0
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// --- Analysis runs ---

func (s *SQLiteStore) CreateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error {
	if run.ID == "" {
		run.ID = newULID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, kind, started_at, records, skipped)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.StartedAt, run.Records, run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("create analysis run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishAnalysisRun(ctx context.Context, run *models.AnalysisRun) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE analysis_runs SET finished_at=?, records=?, skipped=? WHERE id=?",
		run.FinishedAt, run.Records, run.Skipped, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish analysis run: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("analysis run not found: %s", run.ID)
	}
	return nil
}

func (s *SQLiteStore) ListAnalysisRuns(ctx context.Context, limit int) ([]*models.AnalysisRun, error) {
	query := `SELECT id, kind, started_at, finished_at, records, skipped
		FROM analysis_runs ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*models.AnalysisRun
	for rows.Next() {
		run := &models.AnalysisRun{}
		var kind string
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &kind, &run.StartedAt, &finishedAt, &run.Records, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		run.Kind = models.RunKind(kind)
		if finishedAt.Valid {
			run.FinishedAt = finishedAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// --- Comparison results ---

func (s *SQLiteStore) CreateComparison(ctx context.Context, rec *ComparisonRecord) error {
	if rec.ID == "" {
		rec.ID = newULID()
	}
	rec.CreatedAt = time.Now().UTC()

	descA, err := json.Marshal(rec.DescA)
	if err != nil {
		descA = []byte("{}")
	}
	descB, err := json.Marshal(rec.DescB)
	if err != nil {
		descB = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO comparison_results (id, run_id, metric, test, group_a, group_b, desc_a, desc_b, statistic, p_value, effect, magnitude, skipped, skip_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Metric, rec.Test, rec.GroupA, rec.GroupB,
		string(descA), string(descB),
		rec.Statistic, rec.PValue, rec.Effect, rec.Magnitude,
		boolToInt(rec.Skipped), rec.SkipReason, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create comparison: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListComparisons(ctx context.Context, runID string) ([]*ComparisonRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, metric, test, group_a, group_b, desc_a, desc_b, statistic, p_value, effect, magnitude, skipped, skip_reason, created_at
		FROM comparison_results WHERE run_id = ? ORDER BY created_at, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []*ComparisonRecord
	for rows.Next() {
		rec := &ComparisonRecord{}
		var descA, descB string
		var statistic, pValue, effect sql.NullFloat64
		var skipped int

		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Metric, &rec.Test, &rec.GroupA, &rec.GroupB,
			&descA, &descB, &statistic, &pValue, &effect, &rec.Magnitude,
			&skipped, &rec.SkipReason, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		_ = json.Unmarshal([]byte(descA), &rec.DescA)
		_ = json.Unmarshal([]byte(descB), &rec.DescB)
		rec.Statistic = nullFloat(statistic)
		rec.PValue = nullFloat(pValue)
		rec.Effect = nullFloat(effect)
		rec.Skipped = skipped != 0
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// --- Dashboard ---

func (s *SQLiteStore) Counts(ctx context.Context) (*WarehouseCounts, error) {
	counts := &WarehouseCounts{}
	queries := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&counts.PullRequests, "SELECT COUNT(*) FROM pull_requests", nil},
		{&counts.Comments, "SELECT COUNT(*) FROM comments", nil},
		{&counts.Reviews, "SELECT COUNT(*) FROM reviews", nil},
		{&counts.CleanPullRequests, "SELECT COUNT(*) FROM pr_clean", nil},
		{&counts.AIPullRequests, "SELECT COUNT(*) FROM pr_clean WHERE author_type = ?", []any{string(models.AuthorAI)}},
		{&counts.CommentLabels, "SELECT COUNT(*) FROM comment_labels", nil},
		{&counts.AnalysisRuns, "SELECT COUNT(*) FROM analysis_runs", nil},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("count warehouse rows: %w", err)
		}
	}
	return counts, nil
}

func (s *SQLiteStore) ReviewerTypeCounts(ctx context.Context) (map[models.ReviewerType]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT reviewer_type, COUNT(*) FROM pr_clean GROUP BY reviewer_type")
	if err != nil {
		return nil, fmt.Errorf("count reviewer types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[models.ReviewerType]int64)
	for rows.Next() {
		var rt string
		var n int64
		if err := rows.Scan(&rt, &n); err != nil {
			return nil, fmt.Errorf("scan reviewer type count: %w", err)
		}
		counts[models.ReviewerType(rt)] = n
	}
	return counts, rows.Err()
}
