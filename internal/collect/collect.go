// Package collect fetches pull requests, reviews, and review comments for a
// repository from the GitHub API and converts them into warehouse records.
// Collection is the optional upstream of ingest: both feed the same raw
// tables.
package collect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v39/github"

	"github.com/joescharf/prloop/internal/attribution"
	"github.com/joescharf/prloop/internal/models"
)

// Client lists the GitHub data the collector needs. Implementations page
// through results and return complete listings.
type Client interface {
	ListPullRequests(ctx context.Context, owner, repo string) ([]*github.PullRequest, error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error)
	ListReviewComments(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestComment, error)
}

// Snapshot is one repository's collected data, shaped for the raw tables.
type Snapshot struct {
	PullRequests []models.PullRequest
	Comments     []models.Comment
	Reviews      []models.Review
}

// Collector turns API listings into warehouse records, using the bot
// detector to type authors and derive the closed-loop flag.
type Collector struct {
	gh       Client
	detector *attribution.Detector
}

func NewCollector(gh Client, detector *attribution.Detector) *Collector {
	return &Collector{gh: gh, detector: detector}
}

// Collect fetches every pull request of owner/repo with its reviews and
// review comments.
func (c *Collector) Collect(ctx context.Context, owner, repo string) (*Snapshot, error) {
	prs, err := c.gh.ListPullRequests(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}

	snap := &Snapshot{}
	for _, pr := range prs {
		number := pr.GetNumber()
		reviews, err := c.gh.ListReviews(ctx, owner, repo, number)
		if err != nil {
			return nil, fmt.Errorf("list reviews for #%d: %w", number, err)
		}
		comments, err := c.gh.ListReviewComments(ctx, owner, repo, number)
		if err != nil {
			return nil, fmt.Errorf("list review comments for #%d: %w", number, err)
		}

		snap.PullRequests = append(snap.PullRequests, c.convertPullRequest(pr, reviews, comments))
		prID := int64(number)
		for _, r := range reviews {
			snap.Reviews = append(snap.Reviews, convertReview(prID, r))
		}
		for _, cm := range comments {
			snap.Comments = append(snap.Comments, convertComment(prID, cm))
		}
	}
	return snap, nil
}

func (c *Collector) convertPullRequest(pr *github.PullRequest, reviews []*github.PullRequestReview, comments []*github.PullRequestComment) models.PullRequest {
	authorLogin := pr.GetUser().GetLogin()
	authorType := models.AuthorHuman
	if c.detector.IsBot(authorLogin) {
		authorType = models.AuthorAI
	}

	record := models.PullRequest{
		ID:         int64(pr.GetNumber()),
		AuthorType: authorType,
		// List responses omit the Merged flag but always carry MergedAt.
		Merged: pr.MergedAt != nil,
	}

	if end := prEnd(pr); end != nil && pr.CreatedAt != nil {
		hours := end.Sub(*pr.CreatedAt).Hours()
		record.ReviewDurationHours = &hours
	}

	n := int64(len(comments))
	record.NComments = &n

	record.ClosedLoop = c.loopFlag(authorLogin, participantLogins(reviews, comments))
	return record
}

// prEnd returns when the review window closed: merge time, else close time,
// else nil for a PR still open.
func prEnd(pr *github.PullRequest) *time.Time {
	if pr.MergedAt != nil {
		return pr.MergedAt
	}
	return pr.ClosedAt
}

// loopFlag derives the closed-loop flag: true when the PR author and at
// least one reviewing bot share a provider, false when every reviewing bot
// is foreign, nil when either side shows no bot.
func (c *Collector) loopFlag(authorLogin string, participants []string) *bool {
	authorProvider, ok := c.detector.Provider(authorLogin)
	if !ok {
		return nil
	}
	var sawBot, sameProvider bool
	for _, login := range participants {
		provider, ok := c.detector.Provider(login)
		if !ok {
			continue
		}
		sawBot = true
		if provider == authorProvider {
			sameProvider = true
		}
	}
	if !sawBot {
		return nil
	}
	return &sameProvider
}

func participantLogins(reviews []*github.PullRequestReview, comments []*github.PullRequestComment) []string {
	var logins []string
	for _, r := range reviews {
		if login := r.GetUser().GetLogin(); login != "" {
			logins = append(logins, login)
		}
	}
	for _, cm := range comments {
		if login := cm.GetUser().GetLogin(); login != "" {
			logins = append(logins, login)
		}
	}
	return logins
}

func convertReview(prID int64, r *github.PullRequestReview) models.Review {
	review := models.Review{ID: r.GetID(), PRID: prID}
	if login := r.GetUser().GetLogin(); login != "" {
		review.Author = &login
	}
	// GitHub reports APPROVED/CHANGES_REQUESTED/COMMENTED; the warehouse
	// keeps states lowercase.
	if state := strings.ToLower(r.GetState()); state != "" {
		review.State = &state
	}
	return review
}

func convertComment(prID int64, cm *github.PullRequestComment) models.Comment {
	comment := models.Comment{ID: cm.GetID(), PRID: prID}
	if login := cm.GetUser().GetLogin(); login != "" {
		comment.Author = &login
	}
	if body := cm.GetBody(); body != "" {
		comment.Body = &body
	}
	return comment
}
