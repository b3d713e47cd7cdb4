package collect

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v39/github"

	"github.com/joescharf/prloop/internal/cache"
)

// CachedClient decorates a Client with the JSON file cache. API errors pass
// through untouched; cache errors degrade to direct API calls and are
// reported through Warn.
type CachedClient struct {
	client Client
	cache  cache.Cache
	kb     *cache.KeyBuilder
	ttl    time.Duration

	// Warn, when set, receives cache degradation notices.
	Warn func(format string, a ...any)
}

func NewCachedClient(client Client, c cache.Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  c,
		kb:     cache.NewKeyBuilder("github"),
		ttl:    ttl,
	}
}

func (c *CachedClient) warnf(format string, a ...any) {
	if c.Warn != nil {
		c.Warn(format, a...)
	}
}

func (c *CachedClient) ListPullRequests(ctx context.Context, owner, repo string) ([]*github.PullRequest, error) {
	key := c.kb.PullRequestsKey(owner, repo)
	var cached []*github.PullRequest
	err := c.cache.Get(key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.warnf("cache read %s: %v", key, err)
	}

	prs, err := c.client.ListPullRequests(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, prs, c.ttl); err != nil {
		c.warnf("cache write %s: %v", key, err)
	}
	return prs, nil
}

func (c *CachedClient) ListReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error) {
	key := c.kb.ReviewsKey(owner, repo, number)
	var cached []*github.PullRequestReview
	err := c.cache.Get(key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.warnf("cache read %s: %v", key, err)
	}

	reviews, err := c.client.ListReviews(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, reviews, c.ttl); err != nil {
		c.warnf("cache write %s: %v", key, err)
	}
	return reviews, nil
}

func (c *CachedClient) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestComment, error) {
	key := c.kb.ReviewCommentsKey(owner, repo, number)
	var cached []*github.PullRequestComment
	err := c.cache.Get(key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.warnf("cache read %s: %v", key, err)
	}

	comments, err := c.client.ListReviewComments(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, comments, c.ttl); err != nil {
		c.warnf("cache write %s: %v", key, err)
	}
	return comments, nil
}
