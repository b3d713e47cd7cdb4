// Package stats implements the statistical tests behind the research
// comparisons: descriptive summaries, the Mann-Whitney U rank-sum test,
// Cliff's delta effect size, and the chi-square test of independence.
//
// Preconditions are reported through sentinel errors so callers can skip a
// comparison and keep going instead of fabricating zeros.
package stats

import "errors"

var (
	// ErrInsufficientSamples indicates a sample is too small for the test.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrZeroVariance indicates every pooled observation is identical, so
	// the rank distribution carries no information.
	ErrZeroVariance = errors.New("zero variance in pooled samples")

	// ErrDegenerateTable indicates a contingency table with fewer than two
	// informative rows or columns.
	ErrDegenerateTable = errors.New("degenerate contingency table")
)
