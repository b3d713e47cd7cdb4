package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/prloop/internal/metrics"
	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/output"
	"github.com/joescharf/prloop/internal/report"
	"github.com/joescharf/prloop/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <rq1|rq2|rq3|all>",
	Short: "Run the research-question analyses",
	Long: `Run one research question, or all three, over the clean dataset.

rq1 compares AI-authored and human-authored PRs, rq2 aggregates the
classified review comments on AI PRs, and rq3 compares closed-loop and
open-loop AI PRs. Each run prints its tables, records itself with its
comparison rows in the warehouse, and writes the result CSVs to the
configured results directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyzeRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func analyzeRun(which string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()
	writer := report.New(viper.GetString("results_dir"))
	alpha := viper.GetFloat64("stats.alpha")

	switch which {
	case "rq1":
		return analyzeRQ1(ctx, s, writer, alpha)
	case "rq2":
		return analyzeRQ2(ctx, s, writer)
	case "rq3":
		return analyzeRQ3(ctx, s, writer, alpha)
	case "all":
		if err := analyzeRQ1(ctx, s, writer, alpha); err != nil {
			return err
		}
		fmt.Fprintln(ui.Out)
		if err := analyzeRQ2(ctx, s, writer); err != nil {
			return err
		}
		fmt.Fprintln(ui.Out)
		return analyzeRQ3(ctx, s, writer, alpha)
	default:
		return fmt.Errorf("unknown analysis: %s (use: rq1, rq2, rq3, all)", which)
	}
}

func analyzeRQ1(ctx context.Context, s store.Store, writer *report.Writer, alpha float64) error {
	prs, err := s.ListCleanPullRequests(ctx, store.CleanPRFilter{})
	if err != nil {
		return err
	}
	if len(prs) == 0 {
		return fmt.Errorf("clean dataset is empty (run 'prloop preprocess' first)")
	}

	result := metrics.RQ1(prs)

	ui.Info("RQ1: %d clean PRs (%d AI-authored, %d human-authored)", result.Total, result.AI.Count, result.Human.Count)
	renderCohorts(result.AI, result.Human)
	logReviewerTypes(result.AI)
	logReviewerTypes(result.Human)
	fmt.Fprintln(ui.Out)
	renderComparisons(result.Comparisons, alpha)

	if dryRun {
		ui.DryRunMsg("Would record the rq1 run and write result tables to %s", writer.Dir())
		return nil
	}

	run := &models.AnalysisRun{Kind: models.RunRQ1, Records: result.Total}
	if err := s.CreateAnalysisRun(ctx, run); err != nil {
		return err
	}
	if err := storeComparisons(ctx, s, run.ID, result.Comparisons); err != nil {
		return err
	}
	run.Skipped = metrics.SkippedComparisons(result.Comparisons)
	if err := s.FinishAnalysisRun(ctx, run); err != nil {
		return err
	}

	paths, err := writer.WriteRQ1(result)
	if err != nil {
		return err
	}
	for _, p := range paths {
		ui.Success("Wrote %s", p)
	}
	return nil
}

func analyzeRQ2(ctx context.Context, s store.Store, writer *report.Writer) error {
	labels, err := s.ListCommentLabels(ctx)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return fmt.Errorf("no comment labels (run 'prloop preprocess' first)")
	}
	aiPRs, err := s.ListCleanPullRequests(ctx, store.CleanPRFilter{AuthorType: models.AuthorAI})
	if err != nil {
		return err
	}

	result := metrics.RQ2(labels, aiPRs)

	ui.Info("RQ2: %d comments across %d AI PRs (%.2f per PR, %d multi-category)",
		result.TotalComments, result.UniquePRs, result.AvgCommentsPerPR, result.MultiCategory)
	table := ui.Table([]string{"Category", "Count", "Share", "Positive", "Negative", "Neutral"})
	for _, stat := range result.Categories {
		table.Append([]string{
			string(stat.Category),
			report.Int(stat.Count),
			report.Percent(stat.Percent),
			report.Int(stat.Sentiments[models.SentimentPositive]),
			report.Int(stat.Sentiments[models.SentimentNegative]),
			report.Int(stat.Sentiments[models.SentimentNeutral]),
		})
	}
	table.Render()

	fmt.Fprintln(ui.Out)
	for _, sentiment := range models.Sentiments() {
		fmt.Fprintf(ui.Out, "  %-9s %d\n",
			output.SentimentColor(string(sentiment)), result.Sentiments[sentiment])
	}
	if result.UniquePRs > 0 {
		ui.Info("Merge rate of commented PRs: %s", report.Percent(result.MergeRate))
	}

	if dryRun {
		ui.DryRunMsg("Would record the rq2 run and write result tables to %s", writer.Dir())
		return nil
	}

	run := &models.AnalysisRun{Kind: models.RunRQ2, Records: result.TotalComments}
	if err := s.CreateAnalysisRun(ctx, run); err != nil {
		return err
	}
	if err := s.FinishAnalysisRun(ctx, run); err != nil {
		return err
	}

	paths, err := writer.WriteRQ2(result)
	if err != nil {
		return err
	}
	for _, p := range paths {
		ui.Success("Wrote %s", p)
	}
	return nil
}

func analyzeRQ3(ctx context.Context, s store.Store, writer *report.Writer, alpha float64) error {
	aiPRs, err := s.ListCleanPullRequests(ctx, store.CleanPRFilter{AuthorType: models.AuthorAI})
	if err != nil {
		return err
	}
	if len(aiPRs) == 0 {
		return fmt.Errorf("no AI-authored clean PRs (run 'prloop preprocess' first)")
	}

	result := metrics.RQ3(aiPRs)

	ui.Info("RQ3: %d AI PRs (%d closed-loop, %d open-loop, %d unknown)",
		result.Total, result.Closed.Count, result.Open.Count, result.UnknownLoop)
	if result.Closed.Count+result.Open.Count > 0 {
		ui.Info("Closed-loop share: %s", report.Percent(result.ClosedLoopProportion))
	}
	renderCohorts(result.Closed, result.Open)
	fmt.Fprintln(ui.Out)
	renderComparisons(result.Comparisons, alpha)

	if dryRun {
		ui.DryRunMsg("Would record the rq3 run and write result tables to %s", writer.Dir())
		return nil
	}

	run := &models.AnalysisRun{Kind: models.RunRQ3, Records: result.Total}
	if err := s.CreateAnalysisRun(ctx, run); err != nil {
		return err
	}
	if err := storeComparisons(ctx, s, run.ID, result.Comparisons); err != nil {
		return err
	}
	run.Skipped = metrics.SkippedComparisons(result.Comparisons)
	if err := s.FinishAnalysisRun(ctx, run); err != nil {
		return err
	}

	paths, err := writer.WriteRQ3(result)
	if err != nil {
		return err
	}
	for _, p := range paths {
		ui.Success("Wrote %s", p)
	}
	return nil
}

// renderCohorts prints the descriptive face of each cohort.
func renderCohorts(cohorts ...metrics.CohortSummary) {
	table := ui.Table([]string{"Cohort", "PRs", "Merged", "Merge Rate", "Median Duration", "Median Comments"})
	for _, c := range cohorts {
		rate := report.NA
		if c.Count > 0 {
			rate = report.Percent(c.MergeRate)
		}
		table.Append([]string{
			c.Name,
			report.Int(c.Count),
			report.Int(c.Merged),
			rate,
			report.Stat(c.Duration.Median, c.Duration.Count),
			report.Stat(c.Comments.Median, c.Comments.Count),
		})
	}
	table.Render()
}

// renderComparisons prints one row per comparison. Skipped comparisons keep
// their descriptive cells and show n/a for the test columns; the reason goes
// to stderr.
func renderComparisons(comparisons []metrics.Comparison, alpha float64) {
	if len(comparisons) == 0 {
		return
	}
	table := ui.Table([]string{"Metric", "Test", comparisons[0].GroupA, comparisons[0].GroupB, "P-Value", "Effect"})
	for i := range comparisons {
		c := &comparisons[i]
		if c.Skipped {
			ui.Warning("%s: %s skipped (%s)", c.Metric, c.Test, c.SkipReason)
		}
		var a, b string
		if c.Metric == metrics.MetricMergeRate {
			a = report.Rate(c.DescA)
			b = report.Rate(c.DescB)
		} else {
			a = report.Stat(c.DescA.Median, c.DescA.Count)
			b = report.Stat(c.DescB.Median, c.DescB.Count)
		}
		table.Append([]string{
			c.Metric,
			c.Test,
			a,
			b,
			output.PValueColor(report.PValue(c.PValue), c.Significant(alpha)),
			output.MagnitudeColor(report.Effect(c.Effect, c.Magnitude)),
		})
	}
	table.Render()
}

// logReviewerTypes reports a cohort's attribution breakdown in verbose mode.
func logReviewerTypes(c metrics.CohortSummary) {
	ui.VerboseLog("%s reviewer types: %d bot, %d human, %d none", c.Name,
		c.ReviewerTypes[models.ReviewerBot],
		c.ReviewerTypes[models.ReviewerHuman],
		c.ReviewerTypes[models.ReviewerNone])
}

// storeComparisons persists the comparison rows of one run.
func storeComparisons(ctx context.Context, s store.Store, runID string, comparisons []metrics.Comparison) error {
	for i := range comparisons {
		c := &comparisons[i]
		rec := &store.ComparisonRecord{
			RunID:      runID,
			Metric:     c.Metric,
			Test:       c.Test,
			GroupA:     c.GroupA,
			GroupB:     c.GroupB,
			DescA:      c.DescA,
			DescB:      c.DescB,
			Statistic:  c.Statistic,
			PValue:     c.PValue,
			Effect:     c.Effect,
			Magnitude:  c.Magnitude,
			Skipped:    c.Skipped,
			SkipReason: c.SkipReason,
		}
		if err := s.CreateComparison(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
