package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/report"
	"github.com/joescharf/prloop/internal/store"
)

var (
	exportFormat string
	exportType   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export warehouse data as JSON, CSV, or Markdown",
	Long: `Export warehouse tables to stdout.

prs and clean are the raw and cleaned pull-request datasets, comments and
reviews the raw evidence streams, labels the classification fan-out, and
results the stored comparison rows of every analysis run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportType, "type", "prs", "Data type: prs, clean, comments, reviews, labels, results")
	rootCmd.AddCommand(exportCmd)
}

func exportRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch exportType {
	case "prs":
		prs, err := s.ListPullRequests(ctx)
		if err != nil {
			return err
		}
		return exportPullRequests(prs, false)
	case "clean":
		prs, err := s.ListCleanPullRequests(ctx, store.CleanPRFilter{})
		if err != nil {
			return err
		}
		return exportPullRequests(prs, true)
	case "comments":
		return exportComments(ctx, s)
	case "reviews":
		return exportReviews(ctx, s)
	case "labels":
		return exportLabels(ctx, s)
	case "results":
		return exportResults(ctx, s)
	default:
		return fmt.Errorf("unknown export type: %s (use: prs, clean, comments, reviews, labels, results)", exportType)
	}
}

// exportPullRequests renders a pull-request dataset; derived adds the
// preprocess-owned status and reviewer-type columns.
func exportPullRequests(prs []models.PullRequest, derived bool) error {
	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(prs)
	case "csv":
		w := csv.NewWriter(ui.Out)
		header := []string{"id", "author_type", "merged", "review_duration_hours", "n_comments", "closed_loop"}
		if derived {
			header = append(header, "status", "reviewer_type")
		}
		w.Write(header)
		for i := range prs {
			pr := &prs[i]
			row := []string{
				fmt.Sprintf("%d", pr.ID),
				string(pr.AuthorType),
				fmt.Sprintf("%t", pr.Merged),
				report.Optional(pr.ReviewDurationHours),
				int64Cell(pr.NComments),
				boolCell(pr.ClosedLoop),
			}
			if derived {
				row = append(row, string(pr.Status), string(pr.ReviewerType))
			}
			w.Write(row)
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Pull Requests")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| ID | Author | Merged | Duration (h) | Comments | Closed Loop |")
		fmt.Fprintln(ui.Out, "|----|--------|--------|--------------|----------|-------------|")
		for i := range prs {
			pr := &prs[i]
			fmt.Fprintf(ui.Out, "| %d | %s | %t | %s | %s | %s |\n",
				pr.ID, pr.AuthorType, pr.Merged,
				report.Optional(pr.ReviewDurationHours),
				int64Cell(pr.NComments),
				boolCell(pr.ClosedLoop))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func exportComments(ctx context.Context, s store.Store) error {
	comments, err := s.ListComments(ctx)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(comments)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"id", "pr_id", "author", "body"})
		for i := range comments {
			c := &comments[i]
			w.Write([]string{
				fmt.Sprintf("%d", c.ID),
				fmt.Sprintf("%d", c.PRID),
				stringCell(c.Author),
				stringCell(c.Body),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Review Comments")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| ID | PR | Author | Body |")
		fmt.Fprintln(ui.Out, "|----|----|--------|------|")
		for i := range comments {
			c := &comments[i]
			body := report.NA
			if c.Body != nil {
				body = truncate(*c.Body, 60)
			}
			fmt.Fprintf(ui.Out, "| %d | %d | %s | %s |\n", c.ID, c.PRID, stringCell(c.Author), body)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func exportReviews(ctx context.Context, s store.Store) error {
	reviews, err := s.ListReviews(ctx)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(reviews)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"id", "pr_id", "author", "state"})
		for i := range reviews {
			r := &reviews[i]
			w.Write([]string{
				fmt.Sprintf("%d", r.ID),
				fmt.Sprintf("%d", r.PRID),
				stringCell(r.Author),
				stringCell(r.State),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Reviews")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| ID | PR | Author | State |")
		fmt.Fprintln(ui.Out, "|----|----|--------|-------|")
		for i := range reviews {
			r := &reviews[i]
			fmt.Fprintf(ui.Out, "| %d | %d | %s | %s |\n", r.ID, r.PRID, stringCell(r.Author), stringCell(r.State))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func exportLabels(ctx context.Context, s store.Store) error {
	labels, err := s.ListCommentLabels(ctx)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(labels)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"comment_id", "pr_id", "category", "sentiment", "multi_category"})
		for i := range labels {
			l := &labels[i]
			w.Write([]string{
				fmt.Sprintf("%d", l.CommentID),
				fmt.Sprintf("%d", l.PRID),
				string(l.Category),
				string(l.Sentiment),
				fmt.Sprintf("%t", l.MultiCategory),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Comment Labels")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Comment | PR | Category | Sentiment | Multi |")
		fmt.Fprintln(ui.Out, "|---------|----|----------|-----------|-------|")
		for i := range labels {
			l := &labels[i]
			fmt.Fprintf(ui.Out, "| %d | %d | %s | %s | %t |\n", l.CommentID, l.PRID, l.Category, l.Sentiment, l.MultiCategory)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func exportResults(ctx context.Context, s store.Store) error {
	runs, err := s.ListAnalysisRuns(ctx, 0)
	if err != nil {
		return err
	}

	type runExport struct {
		Run         *models.AnalysisRun
		Comparisons []*store.ComparisonRecord
	}
	var results []runExport
	for _, run := range runs {
		comparisons, err := s.ListComparisons(ctx, run.ID)
		if err != nil {
			return err
		}
		results = append(results, runExport{Run: run, Comparisons: comparisons})
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{
			"run_id", "kind", "metric", "test", "group_a", "group_b",
			"count_a", "median_a", "mean_a", "count_b", "median_b", "mean_b",
			"statistic", "p_value", "effect_size", "magnitude", "skipped", "skip_reason",
		})
		for _, re := range results {
			for _, c := range re.Comparisons {
				magnitude := c.Magnitude
				if magnitude == "" {
					magnitude = report.NA
				}
				w.Write([]string{
					re.Run.ID, string(re.Run.Kind), c.Metric, c.Test, c.GroupA, c.GroupB,
					report.Int(c.DescA.Count), report.Stat(c.DescA.Median, c.DescA.Count), report.Stat(c.DescA.Mean, c.DescA.Count),
					report.Int(c.DescB.Count), report.Stat(c.DescB.Median, c.DescB.Count), report.Stat(c.DescB.Mean, c.DescB.Count),
					report.Optional(c.Statistic), report.PValue(c.PValue), report.Optional(c.Effect), magnitude,
					fmt.Sprintf("%t", c.Skipped), c.SkipReason,
				})
			}
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Analysis Results")
		fmt.Fprintln(ui.Out)
		for _, re := range results {
			fmt.Fprintf(ui.Out, "## Run %s (%s)\n", re.Run.ID, re.Run.Kind)
			fmt.Fprintln(ui.Out)
			fmt.Fprintln(ui.Out, "| Metric | Test | P-Value | Effect |")
			fmt.Fprintln(ui.Out, "|--------|------|---------|--------|")
			for _, c := range re.Comparisons {
				fmt.Fprintf(ui.Out, "| %s | %s | %s | %s |\n",
					c.Metric, c.Test, report.PValue(c.PValue), report.Effect(c.Effect, c.Magnitude))
			}
			fmt.Fprintln(ui.Out)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

// Optional-cell renderers shared by the dump and preview tables.
func int64Cell(p *int64) string {
	if p == nil {
		return report.NA
	}
	return fmt.Sprintf("%d", *p)
}

func boolCell(p *bool) string {
	if p == nil {
		return report.NA
	}
	return fmt.Sprintf("%t", *p)
}

func stringCell(p *string) string {
	if p == nil {
		return report.NA
	}
	return *p
}
