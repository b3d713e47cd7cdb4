package collect

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/prloop/internal/cache"
)

func newTestFileCache(t *testing.T) *cache.FileCache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestCachedClientServesFromCache(t *testing.T) {
	fake := &fakeClient{
		prs: []*github.PullRequest{{Number: github.Int(1), User: user("alice")}},
		reviews: map[int][]*github.PullRequestReview{
			1: {{ID: github.Int64(100), User: user("bob"), State: github.String("APPROVED")}},
		},
	}
	cached := NewCachedClient(fake, newTestFileCache(t), time.Hour)
	ctx := context.Background()

	first, err := cached.ListPullRequests(ctx, "octo", "repo")
	require.NoError(t, err)
	second, err := cached.ListPullRequests(ctx, "octo", "repo")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.prCalls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].GetNumber(), second[0].GetNumber())

	_, err = cached.ListReviews(ctx, "octo", "repo", 1)
	require.NoError(t, err)
	reviews, err := cached.ListReviews(ctx, "octo", "repo", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.reviewCalls)
	require.Len(t, reviews, 1)
	assert.Equal(t, "APPROVED", reviews[0].GetState())
}

func TestCachedClientExpiredEntryRefetches(t *testing.T) {
	fake := &fakeClient{
		prs: []*github.PullRequest{{Number: github.Int(1), User: user("alice")}},
	}
	cached := NewCachedClient(fake, newTestFileCache(t), time.Nanosecond)
	ctx := context.Background()

	_, err := cached.ListPullRequests(ctx, "octo", "repo")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cached.ListPullRequests(ctx, "octo", "repo")
	require.NoError(t, err)

	assert.Equal(t, 2, fake.prCalls)
}

func TestCachedClientKeysPerPullRequest(t *testing.T) {
	fake := &fakeClient{
		comments: map[int][]*github.PullRequestComment{
			1: {{ID: github.Int64(200), User: user("carol"), Body: github.String("one")}},
			2: {{ID: github.Int64(201), User: user("carol"), Body: github.String("two")}},
		},
	}
	cached := NewCachedClient(fake, newTestFileCache(t), time.Hour)
	ctx := context.Background()

	one, err := cached.ListReviewComments(ctx, "octo", "repo", 1)
	require.NoError(t, err)
	two, err := cached.ListReviewComments(ctx, "octo", "repo", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, fake.commentCalls)
	require.Len(t, one, 1)
	require.Len(t, two, 1)
	assert.NotEqual(t, one[0].GetID(), two[0].GetID())
}

type brokenCache struct{}

func (brokenCache) Get(key string, value any) error                    { return errors.New("disk gone") }
func (brokenCache) Set(key string, value any, ttl time.Duration) error { return errors.New("disk gone") }
func (brokenCache) Delete(key string) error                            { return nil }
func (brokenCache) Close() error                                       { return nil }

func TestCachedClientDegradesWhenCacheBroken(t *testing.T) {
	fake := &fakeClient{
		prs: []*github.PullRequest{{Number: github.Int(1), User: user("alice")}},
	}
	cached := NewCachedClient(fake, brokenCache{}, time.Hour)

	var warnings []string
	cached.Warn = func(format string, a ...any) {
		warnings = append(warnings, fmt.Sprintf(format, a...))
	}

	prs, err := cached.ListPullRequests(context.Background(), "octo", "repo")
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 1, fake.prCalls)
	// One warning for the failed read, one for the failed write.
	assert.Len(t, warnings, 2)
}
