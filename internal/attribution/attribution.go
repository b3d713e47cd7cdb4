// Package attribution resolves the reviewer type of each pull request (bot,
// human, or none) from the identities of its reviewers and commenters.
//
// Attribution is a fold over independent evidence streams: reviews and
// comments are observed separately and in any order, and "bot" is an
// absorbing state. Once any participant matches a bot keyword the PR stays
// attributed to a bot regardless of later human evidence.
package attribution

import (
	"strings"

	"github.com/joescharf/prloop/internal/models"
)

// DefaultBotKeywords are the vendor/product substrings that mark a
// participant login as an automated reviewer.
func DefaultBotKeywords() []string {
	return []string{"copilot", "cursor", "codex", "claude", "devin"}
}

// Detector tests participant logins against a fixed bot-keyword set.
type Detector struct {
	keywords []string
}

// NewDetector builds a Detector. Keywords are matched case-insensitively as
// substrings of the login.
func NewDetector(keywords []string) *Detector {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Detector{keywords: lowered}
}

// IsBot reports whether a login matches any bot keyword.
func (d *Detector) IsBot(login string) bool {
	_, ok := d.Provider(login)
	return ok
}

// Provider returns the bot keyword a login matches, taken as the vendor
// behind the account. The first keyword wins when several match.
func (d *Detector) Provider(login string) (string, bool) {
	lower := strings.ToLower(login)
	for _, k := range d.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Attribute resolves a single observation of participant logins: bot if any
// login matches, human if there was at least one participant, none otherwise.
// Blank logins count as no participant.
func (d *Detector) Attribute(logins []string) models.ReviewerType {
	seen := false
	for _, l := range logins {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if d.IsBot(l) {
			return models.ReviewerBot
		}
		seen = true
	}
	if seen {
		return models.ReviewerHuman
	}
	return models.ReviewerNone
}

// Ledger accumulates per-PR attribution across evidence streams.
type Ledger struct {
	detector *Detector
	types    map[int64]models.ReviewerType
}

// NewLedger creates an empty attribution ledger.
func NewLedger(d *Detector) *Ledger {
	return &Ledger{detector: d, types: make(map[int64]models.ReviewerType)}
}

// Observe folds one stream's logins for a PR into the ledger. Bot overrides
// any earlier label; human only fills an empty slot.
func (l *Ledger) Observe(prID int64, logins []string) {
	switch l.detector.Attribute(logins) {
	case models.ReviewerBot:
		l.types[prID] = models.ReviewerBot
	case models.ReviewerHuman:
		if _, ok := l.types[prID]; !ok {
			l.types[prID] = models.ReviewerHuman
		}
	}
}

// ReviewerType returns the folded label for a PR, none when no reviewer or
// commenter activity was ever observed.
func (l *Ledger) ReviewerType(prID int64) models.ReviewerType {
	if t, ok := l.types[prID]; ok {
		return t
	}
	return models.ReviewerNone
}

// Counts tallies the ledger by label for diagnostics. PRs never observed are
// not included; callers count those as none.
func (l *Ledger) Counts() map[models.ReviewerType]int {
	counts := make(map[models.ReviewerType]int)
	for _, t := range l.types {
		counts[t]++
	}
	return counts
}
