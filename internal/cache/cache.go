// Package cache is a TTL'd JSON cache for GitHub API responses, keyed by
// request identity. Collection reruns against the same repo replay from disk
// instead of burning rate limit.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON-serializable values with an optional TTL.
type Cache interface {
	// Get unmarshals the cached value for key into value.
	Get(key string, value any) error

	// Set stores value under key; ttl <= 0 means no expiry.
	Set(key string, value any, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	Close() error
}

// Entry wraps a cached payload with its lifetime metadata.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsExpired reports whether the entry's TTL has elapsed.
func (e *Entry) IsExpired() bool {
	if e.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*e.ExpiresAt)
}

// KeyBuilder derives stable cache keys for the collection requests.
type KeyBuilder struct {
	prefix string
}

func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{prefix: prefix}
}

// PullRequestsKey keys the full PR listing of a repository.
func (b *KeyBuilder) PullRequestsKey(owner, repo string) string {
	return b.buildKey("prs", owner, repo)
}

// ReviewsKey keys the review listing of one pull request.
func (b *KeyBuilder) ReviewsKey(owner, repo string, number int) string {
	return b.buildKey("reviews", owner, repo, number)
}

// ReviewCommentsKey keys the review-comment listing of one pull request.
func (b *KeyBuilder) ReviewCommentsKey(owner, repo string, number int) string {
	return b.buildKey("review_comments", owner, repo, number)
}

func (b *KeyBuilder) buildKey(parts ...any) string {
	key := b.prefix
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			key += ":" + v
		case int:
			key += ":" + fmt.Sprintf("%d", v)
		default:
			key += ":" + fmt.Sprintf("%v", v)
		}
	}
	return key
}
