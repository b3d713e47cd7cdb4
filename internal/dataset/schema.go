// Package dataset reads the research CSV collections (pull requests, review
// comments, reviews) into typed records.
//
// Column resolution is explicit and fail-fast: each concept has an ordered
// candidate list, headers are matched case-insensitively, and a required
// concept that resolves to nothing aborts the ingest with a
// MissingColumnError naming every candidate tried. Optional concepts
// (author logins, ids, review state) degrade to absent values instead.
package dataset

import (
	"fmt"
	"strings"
)

// Collection names used in errors and warnings.
const (
	CollectionPullRequests = "pull_requests"
	CollectionComments     = "comments"
	CollectionReviews      = "reviews"
)

// Concept names used in errors and the resolved-column report.
const (
	ConceptID       = "id"
	ConceptAuthor   = "author"
	ConceptPRLink   = "pr linkage"
	ConceptBody     = "comment body"
	ConceptState    = "review state"
	ConceptAuthorT  = "author_type"
	ConceptMerged   = "merged"
	ConceptDuration = "review_duration_hours"
	ConceptComments = "n_comments"
	ConceptLoop     = "closed_loop"
)

// MissingColumnError reports a required concept that no header satisfied.
type MissingColumnError struct {
	Collection string
	Concept    string
	Candidates []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: no column for %s (tried: %s)",
		e.Collection, e.Concept, strings.Join(e.Candidates, ", "))
}

// Candidate lists, in priority order. First present header wins.
func reviewAuthorCandidates() []string {
	return []string{"author_login", "user_login", "login", "reviewer_login", "actor_login"}
}

func commentAuthorCandidates() []string {
	return []string{"author_login", "user_login", "login", "commenter_login", "actor_login", "user"}
}

func prLinkCandidates() []string {
	return []string{"pr_id", "pull_request_id"}
}

func idCandidates(collection string) []string {
	switch collection {
	case CollectionComments:
		return []string{"id", "comment_id"}
	case CollectionReviews:
		return []string{"id", "review_id"}
	default:
		return []string{"id"}
	}
}

func stateCandidates() []string {
	return []string{"state", "review_state"}
}

// bodySubstrings drive the fallback scan when no "body" header exists.
func bodySubstrings() []string {
	return []string{"comment", "text", "content"}
}

// header is a parsed CSV header row: original spellings plus a lowercase
// index for candidate matching.
type header struct {
	names []string
	index map[string]int
}

func newHeader(record []string) header {
	h := header{names: make([]string, len(record)), index: make(map[string]int, len(record))}
	for i, name := range record {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		h.names[i] = name
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
	}
	return h
}

// resolve returns the index of the first candidate present in the header.
func (h header) resolve(candidates []string) (int, bool) {
	for _, c := range candidates {
		if i, ok := h.index[c]; ok {
			return i, true
		}
	}
	return -1, false
}

// resolveBody finds the comment text column: "body" exactly, otherwise the
// first header containing comment/text/content. Columns already claimed by
// another concept are excluded from the fallback scan so a header like
// commenter_login cannot be mistaken for the body.
func (h header) resolveBody(claimed map[int]bool) (int, bool) {
	if i, ok := h.index["body"]; ok {
		return i, true
	}
	for i, name := range h.names {
		if claimed[i] {
			continue
		}
		lower := strings.ToLower(name)
		for _, sub := range bodySubstrings() {
			if strings.Contains(lower, sub) {
				return i, true
			}
		}
	}
	return -1, false
}
