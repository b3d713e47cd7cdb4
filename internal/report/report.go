// Package report writes the analysis result tables. Each research question
// produces a fixed set of CSV artifacts under the results directory; cell
// formatting is shared with the terminal tables so both views agree on how
// absent values are marked.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joescharf/prloop/internal/metrics"
	"github.com/joescharf/prloop/internal/models"
	"github.com/joescharf/prloop/internal/stats"
)

// Result table filenames.
const (
	FileRQ1Summary        = "rq1_summary.csv"
	FileRQ2CategoryStats  = "rq2_category_stats.csv"
	FileRQ2SentimentByCat = "rq2_sentiment_by_category.csv"
	FileRQ2CommentsPerPR  = "rq2_comments_per_pr.csv"
	FileRQ2Summary        = "rq2_summary.csv"
	FileRQ3Metrics        = "rq3_metrics.csv"
	FileRQ3Summary        = "rq3_summary.csv"
)

// Writer emits result tables into a single directory, creating it on first
// write. Files are overwritten wholesale so reruns stay idempotent.
type Writer struct {
	dir string
}

func New(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the results directory.
func (w *Writer) Dir() string { return w.dir }

// WriteRQ1 writes the AI-vs-human summary table and returns the paths
// written.
func (w *Writer) WriteRQ1(result *metrics.RQ1Result) ([]string, error) {
	rows := [][]string{
		{"Metric", "AI_Median", "Human_Median", "AI_Mean", "Human_Mean", "P_Value", "Effect_Size"},
		summaryRow("Review Duration (hours)", findComparison(result.Comparisons, metrics.MetricDuration)),
		rateRow("Merge Rate", findComparison(result.Comparisons, metrics.MetricMergeRate)),
		summaryRow("Number of Comments", findComparison(result.Comparisons, metrics.MetricComments)),
	}

	path, err := w.writeCSV(FileRQ1Summary, rows)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// WriteRQ2 writes the category, sentiment, per-PR, and summary tables for
// the comment analysis and returns the paths written.
func (w *Writer) WriteRQ2(result *metrics.RQ2Result) ([]string, error) {
	var paths []string

	categoryRows := [][]string{{"category", "count", "sentiment_distribution", "percentage"}}
	for _, stat := range result.Categories {
		categoryRows = append(categoryRows, []string{
			string(stat.Category),
			Int(stat.Count),
			sentimentJSON(stat.Sentiments),
			Fixed(stat.Percent * 100),
		})
	}
	path, err := w.writeCSV(FileRQ2CategoryStats, categoryRows)
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	sentimentRows := [][]string{{"category", "sentiment", "count", "percentage"}}
	for _, stat := range result.Categories {
		total := 0
		for _, count := range stat.Sentiments {
			total += count
		}
		for _, sentiment := range models.Sentiments() {
			count := stat.Sentiments[sentiment]
			if count == 0 {
				continue
			}
			sentimentRows = append(sentimentRows, []string{
				string(stat.Category),
				string(sentiment),
				Int(count),
				Fixed(float64(count) / float64(total) * 100),
			})
		}
	}
	path, err = w.writeCSV(FileRQ2SentimentByCat, sentimentRows)
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	perPRRows := [][]string{{"pr_id", "n_comments", "merged"}}
	for _, pr := range result.CommentsPerPR {
		perPRRows = append(perPRRows, []string{
			fmt.Sprintf("%d", pr.PRID),
			Int(pr.Comments),
			fmt.Sprintf("%t", pr.Merged),
		})
	}
	path, err = w.writeCSV(FileRQ2CommentsPerPR, perPRRows)
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	summaryRows := [][]string{
		{"metric", "value"},
		{"Total Comments", Int(result.TotalComments)},
		{"Unique PRs with Comments", Int(result.UniquePRs)},
		{"Average Comments per PR", Num(result.AvgCommentsPerPR)},
		{"Merge Rate (PRs with comments)", Num(result.MergeRate)},
	}
	path, err = w.writeCSV(FileRQ2Summary, summaryRows)
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	return paths, nil
}

// WriteRQ3 writes the long-form metrics table and the closed-vs-open-loop
// summary table and returns the paths written.
func (w *Writer) WriteRQ3(result *metrics.RQ3Result) ([]string, error) {
	var paths []string

	path, err := w.writeCSV(FileRQ3Metrics, rq3MetricRows(result))
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	duration := findComparison(result.Comparisons, metrics.MetricDuration)
	mergeRate := findComparison(result.Comparisons, metrics.MetricMergeRate)
	comments := findComparison(result.Comparisons, metrics.MetricComments)

	proportion := []string{"Closed-Loop Proportion", NA, NA, NA, NA, NA, NA}
	if result.Closed.Count+result.Open.Count > 0 {
		proportion[1] = Percent(result.ClosedLoopProportion)
	}

	summaryRows := [][]string{
		{"Metric", "Closed_Loop_Median", "Open_Loop_Median", "Closed_Loop_Mean", "Open_Loop_Mean", "P_Value", "Effect_Size"},
		proportion,
		summaryRow("Review Duration (hours)", duration),
		rateRow("Merge Rate", mergeRate),
		summaryRow("Number of Comments", comments),
	}
	path, err = w.writeCSV(FileRQ3Summary, summaryRows)
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	return paths, nil
}

// rq3MetricRows builds the long-form table: one proportion row, descriptive
// rows per cohort and metric, then one row per statistical test. Cohorts
// with no observations contribute no descriptive row; skipped tests
// contribute no test row. Within a row every cell the test or metric does
// not produce is marked NA.
func rq3MetricRows(result *metrics.RQ3Result) [][]string {
	header := []string{
		"metric", "group", "count", "merged", "value",
		"median", "mean", "std", "q25", "q75",
		"test", "statistic", "p_value", "effect_size", "effect_interpretation", "degrees_of_freedom",
	}
	blank := func() []string {
		row := make([]string, len(header))
		for i := range row {
			row[i] = NA
		}
		return row
	}

	rows := [][]string{header}

	proportion := blank()
	proportion[0] = "closed_loop_proportion"
	proportion[2] = Int(result.Closed.Count + result.Open.Count)
	if result.Closed.Count+result.Open.Count > 0 {
		proportion[4] = Num(result.ClosedLoopProportion)
	}
	rows = append(rows, proportion)

	duration := findComparison(result.Comparisons, metrics.MetricDuration)
	mergeRate := findComparison(result.Comparisons, metrics.MetricMergeRate)
	comments := findComparison(result.Comparisons, metrics.MetricComments)

	appendDesc := func(metric, group string, d stats.Descriptive) {
		if d.Count == 0 {
			return
		}
		row := blank()
		row[0] = metric
		row[1] = group
		row[2] = Int(d.Count)
		row[5] = Num(d.Median)
		row[6] = Num(d.Mean)
		row[7] = Num(d.Std)
		row[8] = Num(d.Q25)
		row[9] = Num(d.Q75)
		rows = append(rows, row)
	}
	appendRate := func(group string, summary metrics.CohortSummary) {
		row := blank()
		row[0] = metrics.MetricMergeRate
		row[1] = group
		row[2] = Int(summary.Count)
		row[3] = Int(summary.Merged)
		if summary.Count > 0 {
			row[4] = Num(summary.MergeRate)
		}
		rows = append(rows, row)
	}
	appendTest := func(c *metrics.Comparison) {
		if c == nil || c.Skipped {
			return
		}
		row := blank()
		row[0] = c.Metric
		row[10] = c.Test
		row[11] = Optional(c.Statistic)
		row[12] = Optional(c.PValue)
		row[13] = Optional(c.Effect)
		if c.Magnitude != "" {
			row[14] = c.Magnitude
		}
		if c.DOF != nil {
			row[15] = Int(*c.DOF)
		}
		rows = append(rows, row)
	}

	if duration != nil {
		appendDesc(metrics.MetricDuration, result.Closed.Name, duration.DescA)
		appendDesc(metrics.MetricDuration, result.Open.Name, duration.DescB)
	}
	appendRate(result.Closed.Name, result.Closed)
	appendRate(result.Open.Name, result.Open)
	if comments != nil {
		appendDesc(metrics.MetricComments, result.Closed.Name, comments.DescA)
		appendDesc(metrics.MetricComments, result.Open.Name, comments.DescB)
	}
	appendTest(duration)
	appendTest(mergeRate)
	appendTest(comments)

	return rows
}

// summaryRow renders one distribution comparison for the summary grid:
// cohort medians and means, p-value, effect size.
func summaryRow(label string, c *metrics.Comparison) []string {
	if c == nil {
		return []string{label, NA, NA, NA, NA, NA, NA}
	}
	return []string{
		label,
		Stat(c.DescA.Median, c.DescA.Count),
		Stat(c.DescB.Median, c.DescB.Count),
		Stat(c.DescA.Mean, c.DescA.Count),
		Stat(c.DescB.Mean, c.DescB.Count),
		PValue(c.PValue),
		Effect(c.Effect, c.Magnitude),
	}
}

// rateRow renders one rate comparison: the 0/1 indicator means become the
// cohort percentages in the median columns, the mean columns stay NA.
func rateRow(label string, c *metrics.Comparison) []string {
	if c == nil {
		return []string{label, NA, NA, NA, NA, NA, NA}
	}
	return []string{
		label,
		Rate(c.DescA),
		Rate(c.DescB),
		NA,
		NA,
		PValue(c.PValue),
		NA,
	}
}

// findComparison returns the comparison for metric, nil when the driver
// produced none.
func findComparison(comparisons []metrics.Comparison, metric string) *metrics.Comparison {
	for i := range comparisons {
		if comparisons[i].Metric == metric {
			return &comparisons[i]
		}
	}
	return nil
}

// sentimentJSON renders a sentiment histogram as a compact JSON object with
// zero-count sentiments omitted. Keys come out sorted, which keeps the cell
// deterministic.
func sentimentJSON(sentiments map[models.Sentiment]int) string {
	present := make(map[string]int, len(sentiments))
	for sentiment, count := range sentiments {
		if count > 0 {
			present[string(sentiment)] = count
		}
	}
	data, err := json.Marshal(present)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (w *Writer) writeCSV(name string, rows [][]string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	cw := csv.NewWriter(f)
	for _, row := range rows {
		cw.Write(row)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
