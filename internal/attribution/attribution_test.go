package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/prloop/internal/models"
)

func TestDetectorIsBot(t *testing.T) {
	d := NewDetector(DefaultBotKeywords())

	tests := []struct {
		login string
		want  bool
	}{
		{"copilot", true},
		{"Copilot-Reviewer", true},
		{"github-copilot[bot]", true},
		{"CURSOR_AGENT", true},
		{"codex-ci", true},
		{"claude-assistant", true},
		{"devin-ai", true},
		{"alice", false},
		{"bob-the-builder", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.IsBot(tt.login), "login %q", tt.login)
	}
}

func TestDetectorCustomKeywords(t *testing.T) {
	d := NewDetector([]string{"  Sweep ", ""})

	assert.True(t, d.IsBot("sweep-bot"))
	assert.False(t, d.IsBot("copilot"))
}

func TestDetectorProvider(t *testing.T) {
	d := NewDetector(DefaultBotKeywords())

	provider, ok := d.Provider("github-copilot[bot]")
	assert.True(t, ok)
	assert.Equal(t, "copilot", provider)

	provider, ok = d.Provider("alice")
	assert.False(t, ok)
	assert.Empty(t, provider)
}

func TestAttributeSingleObservation(t *testing.T) {
	d := NewDetector(DefaultBotKeywords())

	tests := []struct {
		name   string
		logins []string
		want   models.ReviewerType
	}{
		{"bot among humans", []string{"alice", "copilot-bot", "bob"}, models.ReviewerBot},
		{"humans only", []string{"alice", "bob"}, models.ReviewerHuman},
		{"empty slice", nil, models.ReviewerNone},
		{"blank logins only", []string{"", "  "}, models.ReviewerNone},
		{"blank plus human", []string{"", "carol"}, models.ReviewerHuman},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Attribute(tt.logins))
		})
	}
}

func TestLedgerBotIsAbsorbing(t *testing.T) {
	d := NewDetector(DefaultBotKeywords())

	l := NewLedger(d)
	l.Observe(1, []string{"alice"})
	l.Observe(1, []string{"devin-reviewer"})
	l.Observe(1, []string{"bob"})
	assert.Equal(t, models.ReviewerBot, l.ReviewerType(1))

	l2 := NewLedger(d)
	l2.Observe(1, []string{"devin-reviewer"})
	l2.Observe(1, []string{"alice"})
	assert.Equal(t, models.ReviewerBot, l2.ReviewerType(1))
}

func TestLedgerOrderIndependent(t *testing.T) {
	d := NewDetector(DefaultBotKeywords())

	reviews := map[int64][]string{1: {"alice"}, 2: {"copilot"}, 3: nil}
	comments := map[int64][]string{1: {"cursor-agent"}, 2: {"bob"}, 3: nil}

	forward := NewLedger(d)
	for pr, logins := range reviews {
		forward.Observe(pr, logins)
	}
	for pr, logins := range comments {
		forward.Observe(pr, logins)
	}

	backward := NewLedger(d)
	for pr, logins := range comments {
		backward.Observe(pr, logins)
	}
	for pr, logins := range reviews {
		backward.Observe(pr, logins)
	}

	for _, pr := range []int64{1, 2, 3} {
		assert.Equal(t, forward.ReviewerType(pr), backward.ReviewerType(pr), "pr %d", pr)
	}
	assert.Equal(t, models.ReviewerBot, forward.ReviewerType(1))
	assert.Equal(t, models.ReviewerBot, forward.ReviewerType(2))
	assert.Equal(t, models.ReviewerNone, forward.ReviewerType(3))
}

func TestLedgerNoEvidenceIsNone(t *testing.T) {
	l := NewLedger(NewDetector(DefaultBotKeywords()))

	assert.Equal(t, models.ReviewerNone, l.ReviewerType(42))

	l.Observe(42, nil)
	assert.Equal(t, models.ReviewerNone, l.ReviewerType(42))
}

func TestLedgerCounts(t *testing.T) {
	d := NewDetector(DefaultBotKeywords())
	l := NewLedger(d)

	l.Observe(1, []string{"copilot"})
	l.Observe(2, []string{"alice"})
	l.Observe(3, []string{"bob"})
	l.Observe(4, nil)

	counts := l.Counts()
	assert.Equal(t, 1, counts[models.ReviewerBot])
	assert.Equal(t, 2, counts[models.ReviewerHuman])
	assert.Equal(t, 0, counts[models.ReviewerNone])
}
