package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/prloop/internal/cache"
	"github.com/joescharf/prloop/internal/collect"
)

var collectNoCache bool

var collectCmd = &cobra.Command{
	Use:   "collect <owner/repo>",
	Short: "Collect pull-request data from GitHub",
	Long: `Fetch every pull request of a repository with its reviews and review
comments, derive the research fields (author type, review duration, comment
count, closed-loop flag), and replace the raw tables with the snapshot.

API responses are cached as JSON files under collect.cache_dir. Set
github.token (or PRLOOP_GITHUB_TOKEN) to lift the anonymous rate limit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return collectRun(cmd.Context(), args[0])
	},
}

func init() {
	collectCmd.Flags().BoolVar(&collectNoCache, "no-cache", false, "Bypass the API response cache")
	rootCmd.AddCommand(collectCmd)
}

func collectRun(ctx context.Context, repoArg string) error {
	owner, repo, ok := strings.Cut(repoArg, "/")
	if !ok || owner == "" || repo == "" {
		return fmt.Errorf("repository must be owner/repo, got %q", repoArg)
	}

	var gh collect.Client = collect.NewAPIClient(ctx, viper.GetString("github.token"))
	if !collectNoCache {
		fc, err := cache.NewFileCache(viper.GetString("collect.cache_dir"))
		if err != nil {
			return err
		}
		ttl := time.Duration(viper.GetInt("collect.cache_ttl_hours")) * time.Hour
		cached := collect.NewCachedClient(gh, fc, ttl)
		cached.Warn = ui.Warning
		gh = cached
	}

	collector := collect.NewCollector(gh, newDetector())

	ui.Info("Collecting %s/%s...", owner, repo)
	snap, err := collector.Collect(ctx, owner, repo)
	if err != nil {
		return err
	}
	ui.Info("Fetched %d pull requests, %d reviews, %d review comments",
		len(snap.PullRequests), len(snap.Reviews), len(snap.Comments))

	if dryRun {
		ui.DryRunMsg("Would replace the raw tables with this snapshot")
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	if _, err := s.ReplacePullRequests(ctx, snap.PullRequests); err != nil {
		return err
	}
	if _, err := s.ReplaceComments(ctx, snap.Comments); err != nil {
		return err
	}
	if _, err := s.ReplaceReviews(ctx, snap.Reviews); err != nil {
		return err
	}
	ui.Success("Collected %s/%s into the warehouse", owner, repo)
	return nil
}
