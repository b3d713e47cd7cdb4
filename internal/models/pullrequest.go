package models

// AuthorType distinguishes AI-agent-authored PRs from human-authored ones.
type AuthorType string

const (
	AuthorAI    AuthorType = "ai"
	AuthorHuman AuthorType = "human"
)

// ReviewerType is the attributed kind of reviewer activity on a PR.
type ReviewerType string

const (
	ReviewerBot   ReviewerType = "bot"
	ReviewerHuman ReviewerType = "human"
	ReviewerNone  ReviewerType = "none"
)

// PRStatus is the terminal state of a PR, derived from the merged flag.
type PRStatus string

const (
	StatusMerged PRStatus = "merged"
	StatusClosed PRStatus = "closed"
)

// PullRequest is one pull-request record in the research dataset.
//
// ReviewDurationHours, NComments and ClosedLoop are nil when the source data
// carries no value; missing is never coerced to zero. ClosedLoop is only
// meaningful for AI-authored PRs and is supplied by the upstream collection
// step, not re-derived here. Status and ReviewerType are filled in by the
// preprocess stage and treated as immutable facts afterwards.
type PullRequest struct {
	ID                  int64
	AuthorType          AuthorType
	Merged              bool
	ReviewDurationHours *float64
	NComments           *int64
	ClosedLoop          *bool

	Status       PRStatus
	ReviewerType ReviewerType
}

// IsAI reports whether the PR was authored by an AI agent.
func (p *PullRequest) IsAI() bool { return p.AuthorType == AuthorAI }

// DeriveStatus returns the categorical status for a merged flag.
func DeriveStatus(merged bool) PRStatus {
	if merged {
		return StatusMerged
	}
	return StatusClosed
}
