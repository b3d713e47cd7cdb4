package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPullRequests(t *testing.T) {
	in := strings.NewReader(
		"id,author_type,merged,review_duration_hours,n_comments,closed_loop,extra\n" +
			"1,ai,True,12.5,3,True,x\n" +
			"2,human,False,,2.0,,y\n" +
			"3,AI,true,-4,0,False,z\n")

	prs, stats, err := ReadPullRequests(in)
	require.NoError(t, err)
	require.Len(t, prs, 3)

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 3, stats.Parsed)
	assert.Equal(t, 0, stats.SkippedRows)
	assert.Equal(t, "id", stats.Columns[ConceptID])

	assert.Equal(t, int64(1), prs[0].ID)
	assert.True(t, prs[0].IsAI())
	assert.True(t, prs[0].Merged)
	require.NotNil(t, prs[0].ReviewDurationHours)
	assert.Equal(t, 12.5, *prs[0].ReviewDurationHours)
	require.NotNil(t, prs[0].ClosedLoop)
	assert.True(t, *prs[0].ClosedLoop)

	assert.False(t, prs[1].IsAI())
	assert.Nil(t, prs[1].ReviewDurationHours)
	require.NotNil(t, prs[1].NComments)
	assert.Equal(t, int64(2), *prs[1].NComments)
	assert.Nil(t, prs[1].ClosedLoop)

	// Negative durations ingest as-is; the preprocess stage excludes them.
	require.NotNil(t, prs[2].ReviewDurationHours)
	assert.Equal(t, -4.0, *prs[2].ReviewDurationHours)
}

func TestReadPullRequestsMissingColumn(t *testing.T) {
	in := strings.NewReader("id,author_type,merged,n_comments,closed_loop\n1,ai,true,2,true\n")

	_, _, err := ReadPullRequests(in)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, CollectionPullRequests, missing.Collection)
	assert.Equal(t, ConceptDuration, missing.Concept)
	assert.Contains(t, missing.Error(), "review_duration_hours")
}

func TestReadPullRequestsCellPolicy(t *testing.T) {
	in := strings.NewReader(
		"id,author_type,merged,review_duration_hours,n_comments,closed_loop\n" +
			"x,ai,true,1,1,true\n" +
			"2,robot,true,1,1,true\n" +
			"3,ai,maybe,1,1,true\n" +
			"4,ai,true,garbage,2.5,yes\n" +
			"5,human,false,3.25,4,false\n")

	prs, stats, err := ReadPullRequests(in)
	require.NoError(t, err)

	// Rows 1-3 fail required cells; rows 4-5 survive with degraded cells.
	require.Len(t, prs, 2)
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 3, stats.SkippedRows)
	assert.Len(t, stats.Warnings, 6)

	// Row 4: bad duration and fractional n_comments null out; "yes" is not a bool.
	assert.Equal(t, 3, stats.NullCells)
	assert.Nil(t, prs[0].ReviewDurationHours)
	assert.Nil(t, prs[0].NComments)
	assert.Nil(t, prs[0].ClosedLoop)

	require.NotNil(t, prs[1].ReviewDurationHours)
	assert.Equal(t, 3.25, *prs[1].ReviewDurationHours)
}

func TestReadPullRequestsEmptyFile(t *testing.T) {
	_, _, err := ReadPullRequests(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestReadComments(t *testing.T) {
	in := strings.NewReader(
		"comment_id,pull_request_id,user_login,body\n" +
			"10,1,alice,Looks good\n" +
			"11,1,copilot,\n" +
			"12,2,,Fix the test\n")

	comments, stats, err := ReadComments(in)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, "comment_id", stats.Columns[ConceptID])
	assert.Equal(t, "pull_request_id", stats.Columns[ConceptPRLink])
	assert.Equal(t, "user_login", stats.Columns[ConceptAuthor])
	assert.Equal(t, "body", stats.Columns[ConceptBody])

	assert.Equal(t, int64(10), comments[0].ID)
	assert.Equal(t, int64(1), comments[0].PRID)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "alice", *comments[0].Author)
	require.NotNil(t, comments[0].Body)
	assert.Equal(t, "Looks good", *comments[0].Body)

	// Empty body ingests as absent, never as a skip.
	assert.Nil(t, comments[1].Body)
	assert.Nil(t, comments[2].Author)
}

func TestReadCommentsBodyFallbackScan(t *testing.T) {
	// No "body" header: commenter_login is claimed by the author concept, so
	// the scan lands on comment_text.
	in := strings.NewReader(
		"pr_id,commenter_login,comment_text\n" +
			"1,bob,Needs a null check\n")

	comments, stats, err := ReadComments(in)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	assert.Equal(t, "comment_text", stats.Columns[ConceptBody])
	assert.Equal(t, "commenter_login", stats.Columns[ConceptAuthor])
	require.NotNil(t, comments[0].Body)
	assert.Equal(t, "Needs a null check", *comments[0].Body)
}

func TestReadCommentsNoBodyColumn(t *testing.T) {
	in := strings.NewReader("pr_id,user_login\n1,alice\n")

	_, _, err := ReadComments(in)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, CollectionComments, missing.Collection)
	assert.Equal(t, ConceptBody, missing.Concept)
}

func TestReadCommentsWithoutAuthorOrID(t *testing.T) {
	in := strings.NewReader(
		"pr_id,body\n" +
			"1,first\n" +
			"1,second\n" +
			"bad,third\n" +
			"2,fourth\n")

	comments, stats, err := ReadComments(in)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.False(t, stats.HasColumn(ConceptAuthor))
	assert.False(t, stats.HasColumn(ConceptID))
	assert.Equal(t, 1, stats.SkippedRows)

	// Ids fall back to the data-row ordinal.
	assert.Equal(t, int64(1), comments[0].ID)
	assert.Equal(t, int64(2), comments[1].ID)
	assert.Equal(t, int64(4), comments[2].ID)
	assert.Nil(t, comments[0].Author)
}

func TestReadReviews(t *testing.T) {
	in := strings.NewReader(
		"review_id,pr_id,reviewer_login,state\n" +
			"100,1,claude-reviewer,APPROVED\n" +
			"101,2,carol,CHANGES_REQUESTED\n")

	reviews, stats, err := ReadReviews(in)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	assert.Equal(t, "reviewer_login", stats.Columns[ConceptAuthor])
	assert.Equal(t, int64(100), reviews[0].ID)
	assert.Equal(t, int64(1), reviews[0].PRID)
	require.NotNil(t, reviews[0].Author)
	assert.Equal(t, "claude-reviewer", *reviews[0].Author)
	require.NotNil(t, reviews[1].State)
	assert.Equal(t, "CHANGES_REQUESTED", *reviews[1].State)
}

func TestReadReviewsMissingLinkage(t *testing.T) {
	in := strings.NewReader("review_id,reviewer_login\n100,alice\n")

	_, _, err := ReadReviews(in)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, CollectionReviews, missing.Collection)
	assert.Equal(t, ConceptPRLink, missing.Concept)
	assert.Equal(t, prLinkCandidates(), missing.Candidates)
}

func TestReadRowSkipsRaggedRows(t *testing.T) {
	in := strings.NewReader(
		"pr_id,body\n" +
			"1,fine\n" +
			"2,too,many,fields\n" +
			"3,also fine\n")

	comments, stats, err := ReadComments(in)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, 1, stats.SkippedRows)
	assert.Contains(t, stats.Warnings[0], "wrong field count")
}

func TestHeaderHandlesBOMAndCase(t *testing.T) {
	in := strings.NewReader(
		"\uFEFFID,Author_Type,MERGED,Review_Duration_Hours,N_Comments,Closed_Loop\n" +
			"1,ai,true,2.0,1,false\n")

	prs, stats, err := ReadPullRequests(in)
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, "ID", stats.Columns[ConceptID])
}
