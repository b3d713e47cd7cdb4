package models

// Review is one formal review submitted on a pull request. Only the author
// identity feeds the attribution fold; State is kept for export completeness.
type Review struct {
	ID     int64
	PRID   int64
	Author *string
	State  *string
}
