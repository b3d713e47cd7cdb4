package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/prloop/internal/attribution"
	"github.com/joescharf/prloop/internal/classify"
	"github.com/joescharf/prloop/internal/models"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Build the clean dataset and classify review comments",
	Long: `Build the cleaned pull-request dataset from the raw tables.

Pull requests without a usable review duration are dropped, the merged flag
becomes a status label, and every PR is attributed a reviewer type from its
review and comment authors. Comments on AI-authored clean PRs are then
classified against the keyword taxonomy.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return preprocessRun()
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
}

func preprocessRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	prs, err := s.ListPullRequests(ctx)
	if err != nil {
		return err
	}
	if len(prs) == 0 {
		return fmt.Errorf("no pull requests ingested (run 'prloop ingest' or 'prloop collect' first)")
	}
	comments, err := s.ListComments(ctx)
	if err != nil {
		return err
	}
	reviews, err := s.ListReviews(ctx)
	if err != nil {
		return err
	}

	// Attribution folds both evidence streams; bot is sticky.
	ledger := attribution.NewLedger(newDetector())
	for i := range reviews {
		if reviews[i].Author != nil {
			ledger.Observe(reviews[i].PRID, []string{*reviews[i].Author})
		}
	}
	for i := range comments {
		if comments[i].Author != nil {
			ledger.Observe(comments[i].PRID, []string{*comments[i].Author})
		}
	}

	// Cleaning pass: every comparison downstream needs a real, non-negative
	// review duration.
	var clean []models.PullRequest
	var noDuration, negDuration int
	for _, pr := range prs {
		switch {
		case pr.ReviewDurationHours == nil:
			noDuration++
			continue
		case *pr.ReviewDurationHours < 0:
			negDuration++
			continue
		}
		pr.Status = models.DeriveStatus(pr.Merged)
		pr.ReviewerType = ledger.ReviewerType(pr.ID)
		clean = append(clean, pr)
	}

	if dryRun {
		aiIDs := make(map[int64]bool)
		for i := range clean {
			if clean[i].IsAI() {
				aiIDs[clean[i].ID] = true
			}
		}
		var aiComments int
		for i := range comments {
			if aiIDs[comments[i].PRID] {
				aiComments++
			}
		}
		ui.DryRunMsg("Would keep %d of %d pull requests and classify %d AI-PR comments", len(clean), len(prs), aiComments)
		return nil
	}

	n, err := s.ReplaceCleanPullRequests(ctx, clean)
	if err != nil {
		return err
	}
	ui.Success("Clean dataset: kept %d of %d pull requests", n, len(prs))
	if noDuration > 0 {
		ui.Warning("Dropped %d PRs without a review duration", noDuration)
	}
	if negDuration > 0 {
		ui.Warning("Dropped %d PRs with a negative review duration", negDuration)
	}

	types := make(map[models.ReviewerType]int)
	for i := range clean {
		types[clean[i].ReviewerType]++
	}
	ui.VerboseLog("Reviewer types: %d bot, %d human, %d none",
		types[models.ReviewerBot], types[models.ReviewerHuman], types[models.ReviewerNone])

	// Classification runs over the comments of AI-authored clean PRs.
	aiComments, err := s.ListAIComments(ctx)
	if err != nil {
		return err
	}
	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}
	classifier := classify.New(tax)

	var labels []models.CommentLabel
	multi := 0
	for i := range aiComments {
		res := classifier.Classify(aiComments[i].Body)
		if res.MultiCategory {
			multi++
		}
		labels = append(labels, classify.Expand(&aiComments[i], res)...)
	}

	ln, err := s.ReplaceCommentLabels(ctx, labels)
	if err != nil {
		return err
	}
	ui.Success("Classified %d AI-PR comments into %d labels (%d multi-category)", len(aiComments), ln, multi)
	return nil
}

// newDetector builds the bot detector from the configured keyword list.
func newDetector() *attribution.Detector {
	return attribution.NewDetector(viper.GetStringSlice("bots.keywords"))
}
