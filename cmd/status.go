package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show warehouse status dashboard",
	Long: `Show dataset sizes, the reviewer-type breakdown of the cleaned
dataset, and recent analysis runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	counts, err := s.Counts(ctx)
	if err != nil {
		return err
	}

	if counts.PullRequests == 0 && counts.Comments == 0 && counts.Reviews == 0 {
		ui.Info("No data yet. Use 'prloop ingest' or 'prloop collect' to get started.")
		return nil
	}

	table := ui.Table([]string{"Dataset", "Rows"})
	table.Append([]string{"pull requests", fmt.Sprintf("%d", counts.PullRequests)})
	table.Append([]string{"review comments", fmt.Sprintf("%d", counts.Comments)})
	table.Append([]string{"reviews", fmt.Sprintf("%d", counts.Reviews)})
	table.Append([]string{"clean pull requests", fmt.Sprintf("%d", counts.CleanPullRequests)})
	table.Append([]string{"ai pull requests", fmt.Sprintf("%d", counts.AIPullRequests)})
	table.Append([]string{"comment labels", fmt.Sprintf("%d", counts.CommentLabels)})
	table.Render()

	if counts.CleanPullRequests > 0 {
		reviewerCounts, err := s.ReviewerTypeCounts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "Reviewer types (clean dataset):")
		for _, rt := range []models.ReviewerType{models.ReviewerBot, models.ReviewerHuman, models.ReviewerNone} {
			fmt.Fprintf(ui.Out, "  %-6s %d\n", rt, reviewerCounts[rt])
		}
	} else {
		fmt.Fprintln(ui.Out)
		ui.Info("Raw data only. Run 'prloop preprocess' to build the clean dataset.")
	}

	runs, err := s.ListAnalysisRuns(ctx, 5)
	if err != nil {
		return err
	}
	if len(runs) > 0 {
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "Recent analysis runs:")
		runTable := ui.Table([]string{"Run", "Kind", "Finished", "Records", "Skipped"})
		for _, r := range runs {
			finished := "running"
			if !r.FinishedAt.IsZero() {
				finished = timeAgo(r.FinishedAt)
			}
			runTable.Append([]string{
				output.Cyan(r.ID),
				string(r.Kind),
				finished,
				fmt.Sprintf("%d", r.Records),
				fmt.Sprintf("%d", r.Skipped),
			})
		}
		runTable.Render()
	}

	return nil
}

// timeAgo renders a timestamp as a relative duration.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}
