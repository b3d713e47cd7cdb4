package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joescharf/prloop/internal/dataset"
	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/output"
	"github.com/joescharf/prloop/internal/report"
	"github.com/joescharf/prloop/internal/store"
)

// previewLimit caps the rows shown in dry-run preview tables.
const previewLimit = 10

var (
	ingestPRsFile      string
	ingestCommentsFile string
	ingestReviewsFile  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest research CSV collections into the warehouse",
	Long: `Ingest pull-request, review-comment, and review CSV files.

Each collection replaces its table wholesale, so re-running an ingest is
idempotent. Rows with unparsable required cells are skipped with a warning;
unparsable optional cells ingest as absent values. A collection missing a
required column aborts the whole ingest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ingestRun()
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestPRsFile, "prs", "", "Pull-request CSV file")
	ingestCmd.Flags().StringVar(&ingestCommentsFile, "comments", "", "Review-comment CSV file")
	ingestCmd.Flags().StringVar(&ingestReviewsFile, "reviews", "", "Review CSV file")
	rootCmd.AddCommand(ingestCmd)
}

func ingestRun() error {
	if ingestPRsFile == "" && ingestCommentsFile == "" && ingestReviewsFile == "" {
		return fmt.Errorf("nothing to ingest (use --prs, --comments, and/or --reviews)")
	}

	ctx := context.Background()

	// Dry-run previews parse without touching the database.
	var s store.Store
	if !dryRun {
		var err error
		s, err = getStore()
		if err != nil {
			return err
		}
	}

	if ingestPRsFile != "" {
		if err := ingestPullRequests(ctx, s, ingestPRsFile); err != nil {
			return err
		}
	}
	if ingestCommentsFile != "" {
		if err := ingestComments(ctx, s, ingestCommentsFile); err != nil {
			return err
		}
	}
	if ingestReviewsFile != "" {
		if err := ingestReviews(ctx, s, ingestReviewsFile); err != nil {
			return err
		}
	}
	return nil
}

func ingestPullRequests(ctx context.Context, s store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	prs, stats, err := dataset.ReadPullRequests(f)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	reportIngest(stats)

	if dryRun {
		previewPullRequests(prs)
		ui.DryRunMsg("Would replace %d pull requests", len(prs))
		return nil
	}

	n, err := s.ReplacePullRequests(ctx, prs)
	if err != nil {
		return err
	}
	ui.Success("Ingested %d pull requests from %s", n, path)
	return nil
}

func ingestComments(ctx context.Context, s store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	comments, stats, err := dataset.ReadComments(f)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	reportIngest(stats)
	if !stats.HasColumn(dataset.ConceptAuthor) {
		ui.Warning("%s: no author column; comment-based reviewer attribution is disabled", stats.Collection)
	}

	if dryRun {
		previewComments(comments)
		ui.DryRunMsg("Would replace %d review comments", len(comments))
		return nil
	}

	n, err := s.ReplaceComments(ctx, comments)
	if err != nil {
		return err
	}
	ui.Success("Ingested %d review comments from %s", n, path)
	return nil
}

func ingestReviews(ctx context.Context, s store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reviews, stats, err := dataset.ReadReviews(f)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	reportIngest(stats)
	if !stats.HasColumn(dataset.ConceptAuthor) {
		ui.Warning("%s: no author column; review-based reviewer attribution is disabled", stats.Collection)
	}

	if dryRun {
		ui.DryRunMsg("Would replace %d reviews", len(reviews))
		return nil
	}

	n, err := s.ReplaceReviews(ctx, reviews)
	if err != nil {
		return err
	}
	ui.Success("Ingested %d reviews from %s", n, path)
	return nil
}

// reportIngest surfaces what a reader did: resolved columns and row-level
// degradations in verbose mode, aggregate degradation counts always.
func reportIngest(stats *dataset.IngestStats) {
	for concept, column := range stats.Columns {
		ui.VerboseLog("%s: %s resolved to column %q", stats.Collection, concept, column)
	}
	for _, w := range stats.Warnings {
		ui.VerboseLog("%s: %s", stats.Collection, w)
	}
	if stats.SkippedRows > 0 {
		ui.Warning("%s: skipped %d of %d rows (use --verbose for detail)", stats.Collection, stats.SkippedRows, stats.Rows)
	}
	if stats.NullCells > 0 {
		ui.Warning("%s: ingested %d unparsable cells as absent", stats.Collection, stats.NullCells)
	}
}

func previewPullRequests(prs []models.PullRequest) {
	table := ui.Table([]string{"ID", "Author", "Status", "Duration (h)", "Comments", "Closed Loop"})
	for i, pr := range prs {
		if i == previewLimit {
			break
		}
		table.Append([]string{
			fmt.Sprintf("%d", pr.ID),
			string(pr.AuthorType),
			output.StatusColor(string(models.DeriveStatus(pr.Merged))),
			report.Optional(pr.ReviewDurationHours),
			int64Cell(pr.NComments),
			boolCell(pr.ClosedLoop),
		})
	}
	table.Render()
	if len(prs) > previewLimit {
		ui.Info("... and %d more", len(prs)-previewLimit)
	}
}

func previewComments(comments []models.Comment) {
	table := ui.Table([]string{"ID", "PR", "Author", "Body"})
	for i, c := range comments {
		if i == previewLimit {
			break
		}
		body := report.NA
		if c.Body != nil {
			body = truncate(*c.Body, 48)
		}
		table.Append([]string{
			fmt.Sprintf("%d", c.ID),
			fmt.Sprintf("%d", c.PRID),
			stringCell(c.Author),
			body,
		})
	}
	table.Render()
	if len(comments) > previewLimit {
		ui.Info("... and %d more", len(comments)-previewLimit)
	}
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
