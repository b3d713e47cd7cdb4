package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/joescharf/prloop/internal/models"
)

// IngestStats reports what a reader did with one CSV collection: resolved
// columns, row counts, and the cell-level degradations of the error policy
// (skipped rows for bad required cells, nulled cells for bad optional ones).
type IngestStats struct {
	Collection  string
	Rows        int
	Parsed      int
	SkippedRows int
	NullCells   int
	Columns     map[string]string
	Warnings    []string
}

func newIngestStats(collection string) *IngestStats {
	return &IngestStats{Collection: collection, Columns: make(map[string]string)}
}

func (s *IngestStats) warnf(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// HasColumn reports whether an optional concept resolved to a real column.
func (s *IngestStats) HasColumn(concept string) bool {
	_, ok := s.Columns[concept]
	return ok
}

// ReadPullRequests parses the pull-request collection. All six columns are
// required; rows with unparsable id, author_type or merged cells are skipped
// with a warning, while bad optional measurements ingest as absent.
func ReadPullRequests(r io.Reader) ([]models.PullRequest, *IngestStats, error) {
	stats := newIngestStats(CollectionPullRequests)
	cr := newCSVReader(r)
	h, err := readHeader(cr, stats.Collection)
	if err != nil {
		return nil, stats, err
	}

	cols := make(map[string]int, 6)
	for _, concept := range []string{ConceptID, ConceptAuthorT, ConceptMerged, ConceptDuration, ConceptComments, ConceptLoop} {
		idx, ok := h.resolve([]string{concept})
		if !ok {
			return nil, stats, &MissingColumnError{
				Collection: stats.Collection,
				Concept:    concept,
				Candidates: []string{concept},
			}
		}
		cols[concept] = idx
		stats.Columns[concept] = h.names[idx]
	}

	var prs []models.PullRequest
	for {
		record, done, skip := readRow(cr, stats)
		if done {
			break
		}
		if skip {
			continue
		}

		id, ok := parseInt64(record[cols[ConceptID]])
		if !ok {
			stats.skipRow("id", record[cols[ConceptID]])
			continue
		}
		authorType, ok := parseAuthorType(record[cols[ConceptAuthorT]])
		if !ok {
			stats.skipRow("author_type", record[cols[ConceptAuthorT]])
			continue
		}
		merged, ok := parseBool(record[cols[ConceptMerged]])
		if !ok {
			stats.skipRow("merged", record[cols[ConceptMerged]])
			continue
		}

		pr := models.PullRequest{
			ID:         id,
			AuthorType: authorType,
			Merged:     merged,
		}
		pr.ReviewDurationHours = stats.optionalFloat("review_duration_hours", record[cols[ConceptDuration]])
		pr.NComments = stats.optionalInt64("n_comments", record[cols[ConceptComments]])
		pr.ClosedLoop = stats.optionalBool("closed_loop", record[cols[ConceptLoop]])

		prs = append(prs, pr)
		stats.Parsed++
	}
	return prs, stats, nil
}

// ReadComments parses the review-comment collection. PR linkage and a body
// column are required; the author column is optional (its absence disables
// comment-based attribution), and missing ids fall back to the row ordinal.
func ReadComments(r io.Reader) ([]models.Comment, *IngestStats, error) {
	stats := newIngestStats(CollectionComments)
	cr := newCSVReader(r)
	h, err := readHeader(cr, stats.Collection)
	if err != nil {
		return nil, stats, err
	}

	linkIdx, ok := h.resolve(prLinkCandidates())
	if !ok {
		return nil, stats, &MissingColumnError{
			Collection: stats.Collection,
			Concept:    ConceptPRLink,
			Candidates: prLinkCandidates(),
		}
	}
	stats.Columns[ConceptPRLink] = h.names[linkIdx]

	claimed := map[int]bool{linkIdx: true}
	idIdx, hasID := h.resolve(idCandidates(CollectionComments))
	if hasID {
		claimed[idIdx] = true
		stats.Columns[ConceptID] = h.names[idIdx]
	}
	authorIdx, hasAuthor := h.resolve(commentAuthorCandidates())
	if hasAuthor {
		claimed[authorIdx] = true
		stats.Columns[ConceptAuthor] = h.names[authorIdx]
	}

	bodyIdx, ok := h.resolveBody(claimed)
	if !ok {
		return nil, stats, &MissingColumnError{
			Collection: stats.Collection,
			Concept:    ConceptBody,
			Candidates: append([]string{"body"}, bodySubstrings()...),
		}
	}
	stats.Columns[ConceptBody] = h.names[bodyIdx]

	var comments []models.Comment
	for {
		record, done, skip := readRow(cr, stats)
		if done {
			break
		}
		if skip {
			continue
		}

		prID, ok := parseInt64(record[linkIdx])
		if !ok {
			stats.skipRow("pr linkage", record[linkIdx])
			continue
		}
		id := int64(stats.Rows)
		if hasID {
			id, ok = parseInt64(record[idIdx])
			if !ok {
				stats.skipRow("id", record[idIdx])
				continue
			}
		}

		c := models.Comment{ID: id, PRID: prID}
		if hasAuthor {
			c.Author = optionalString(record[authorIdx])
		}
		c.Body = optionalString(record[bodyIdx])

		comments = append(comments, c)
		stats.Parsed++
	}
	return comments, stats, nil
}

// ReadReviews parses the review collection. Only PR linkage is required;
// author and state degrade to absent values.
func ReadReviews(r io.Reader) ([]models.Review, *IngestStats, error) {
	stats := newIngestStats(CollectionReviews)
	cr := newCSVReader(r)
	h, err := readHeader(cr, stats.Collection)
	if err != nil {
		return nil, stats, err
	}

	linkIdx, ok := h.resolve(prLinkCandidates())
	if !ok {
		return nil, stats, &MissingColumnError{
			Collection: stats.Collection,
			Concept:    ConceptPRLink,
			Candidates: prLinkCandidates(),
		}
	}
	stats.Columns[ConceptPRLink] = h.names[linkIdx]

	idIdx, hasID := h.resolve(idCandidates(CollectionReviews))
	if hasID {
		stats.Columns[ConceptID] = h.names[idIdx]
	}
	authorIdx, hasAuthor := h.resolve(reviewAuthorCandidates())
	if hasAuthor {
		stats.Columns[ConceptAuthor] = h.names[authorIdx]
	}
	stateIdx, hasState := h.resolve(stateCandidates())
	if hasState {
		stats.Columns[ConceptState] = h.names[stateIdx]
	}

	var reviews []models.Review
	for {
		record, done, skip := readRow(cr, stats)
		if done {
			break
		}
		if skip {
			continue
		}

		prID, ok := parseInt64(record[linkIdx])
		if !ok {
			stats.skipRow("pr linkage", record[linkIdx])
			continue
		}
		id := int64(stats.Rows)
		if hasID {
			id, ok = parseInt64(record[idIdx])
			if !ok {
				stats.skipRow("id", record[idIdx])
				continue
			}
		}

		rv := models.Review{ID: id, PRID: prID}
		if hasAuthor {
			rv.Author = optionalString(record[authorIdx])
		}
		if hasState {
			rv.State = optionalString(record[stateIdx])
		}

		reviews = append(reviews, rv)
		stats.Parsed++
	}
	return reviews, stats, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

func readHeader(cr *csv.Reader, collection string) (header, error) {
	record, err := cr.Read()
	if err == io.EOF {
		return header{}, fmt.Errorf("%s: empty file", collection)
	}
	if err != nil {
		return header{}, fmt.Errorf("%s: reading header: %w", collection, err)
	}
	return newHeader(record), nil
}

// readRow reads the next data row. done means end of input; skip means the
// row was malformed (wrong field count) and has been counted and warned.
func readRow(cr *csv.Reader, stats *IngestStats) (record []string, done, skip bool) {
	record, err := cr.Read()
	if err == io.EOF {
		return nil, true, false
	}
	stats.Rows++
	if err != nil {
		if errors.Is(err, csv.ErrFieldCount) {
			stats.SkippedRows++
			stats.warnf("row %d: wrong field count, skipped", stats.Rows)
			return nil, false, true
		}
		stats.SkippedRows++
		stats.warnf("row %d: %v, skipped", stats.Rows, err)
		return nil, false, true
	}
	return record, false, false
}

func (s *IngestStats) skipRow(concept, cell string) {
	s.SkippedRows++
	s.warnf("row %d: unparsable %s %q, skipped", s.Rows, concept, cell)
}

func (s *IngestStats) nullCell(concept, cell string) {
	s.NullCells++
	s.warnf("row %d: unparsable %s %q, ingested as absent", s.Rows, concept, cell)
}

func (s *IngestStats) optionalFloat(concept, cell string) *float64 {
	if isMissing(cell) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		s.nullCell(concept, cell)
		return nil
	}
	return &v
}

func (s *IngestStats) optionalInt64(concept, cell string) *int64 {
	if isMissing(cell) {
		return nil
	}
	v, ok := parseInt64(cell)
	if !ok {
		s.nullCell(concept, cell)
		return nil
	}
	return &v
}

func (s *IngestStats) optionalBool(concept, cell string) *bool {
	if isMissing(cell) {
		return nil
	}
	v, ok := parseBool(cell)
	if !ok {
		s.nullCell(concept, cell)
		return nil
	}
	return &v
}

// parseInt64 accepts plain integers and integral floats ("3" and "3.0");
// the latter show up when pandas widens an int column that carried NaNs.
func parseInt64(cell string) (int64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func parseBool(cell string) (bool, bool) {
	v, err := strconv.ParseBool(strings.TrimSpace(cell))
	if err != nil {
		return false, false
	}
	return v, true
}

func parseAuthorType(cell string) (models.AuthorType, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case string(models.AuthorAI):
		return models.AuthorAI, true
	case string(models.AuthorHuman):
		return models.AuthorHuman, true
	default:
		return "", false
	}
}

// isMissing marks the empty cell and the usual NA spellings of typed cells.
// Free-text cells (body, logins) only treat the empty string as missing.
func isMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	default:
		return false
	}
}

func optionalString(cell string) *string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
