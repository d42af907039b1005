// Package output provides terminal output utilities for ratingscope.
//
// This package includes:
//   - Table rendering for the yearly summary, group comparisons, rating
//     distributions, brand trends, and the import and report ledgers
//   - Progress bars for imports and spinners for indeterminate work
//   - JSON encoding for machine-readable output
//
// Tables are plain fixed-width text with inline bars. ANSI colors are only
// emitted when stdout is a terminal and NO_COLOR is unset.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

// ANSI color codes for rating display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// barWidth is the width of a full inline bar in characters.
const barWidth = 30

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// ratingColor returns the color of a mean rating: green from 4 stars,
// yellow from 3, red below.
func ratingColor(mean float64) string {
	switch {
	case math.IsNaN(mean):
		return colorGray
	case mean >= 4:
		return colorGreen
	case mean >= 3:
		return colorYellow
	default:
		return colorRed
	}
}

// rule returns a horizontal separator line of the given width.
func rule(width int) string {
	return strings.Repeat("─", width) + "\n"
}

// RenderYearlyTable renders the mean rating and review count per year.
func RenderYearlyTable(rows []analyzer.YearSummary) string {
	if len(rows) == 0 {
		return "No reviews found.\n"
	}

	maxCount := 0
	for _, r := range rows {
		if r.NumRatings > maxCount {
			maxCount = r.NumRatings
		}
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-10s %-12s %s\n", "Year", "Avg Stars", "Reviews", "Volume"))
	sb.WriteString(rule(64))

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-6d %s %-12s %s\n",
			r.Year,
			colorize(ratingColor(r.AvgRating), fmt.Sprintf("%-10s", formatMean(r.AvgRating))),
			humanize.Comma(int64(r.NumRatings)),
			bar(float64(r.NumRatings), float64(maxCount), barWidth)))
	}

	return sb.String()
}

// RenderComparisonTable renders per-group statistics under a title. Bars
// show the mean on the full 1-5 scale.
func RenderComparisonTable(title string, stats []analyzer.GroupStats) string {
	if len(stats) == 0 {
		return "No matching reviews found.\n"
	}

	var sb strings.Builder

	if title != "" {
		sb.WriteString(title + "\n\n")
	}

	sb.WriteString(fmt.Sprintf("%-20s %-10s %-6s %-6s %-5s %-5s %s\n",
		"Group", "Reviews", "Mean", "Std", "Min", "Max", "Rating"))
	sb.WriteString(rule(80))

	for _, g := range stats {
		sb.WriteString(fmt.Sprintf("%-20s %-10s %s %-6s %-5d %-5d %s\n",
			truncate(g.Group, 20),
			humanize.Comma(int64(g.Count)),
			colorize(ratingColor(g.Mean), fmt.Sprintf("%-6s", formatMean(g.Mean))),
			formatMean(g.Std),
			g.Min,
			g.Max,
			bar(g.Mean, float64(analyzer.NumStars), barWidth)))
	}

	return sb.String()
}

// RenderDistributionTable renders a rating distribution. An ungrouped
// distribution is shown one star value per line; a grouped one as a
// cross-tab of percentages.
func RenderDistributionTable(d *analyzer.Distribution) string {
	if d == nil || len(d.Rows) == 0 {
		return "No reviews found.\n"
	}

	if d.By == analyzer.GroupByNone && len(d.Rows) == 1 {
		return renderStarCounts(d.Rows[0])
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s", groupHeader(d.By)))
	for i := 0; i < analyzer.NumStars; i++ {
		sb.WriteString(fmt.Sprintf(" %7s", starLabel(i)))
	}
	sb.WriteString(fmt.Sprintf(" %10s\n", "Reviews"))
	sb.WriteString(rule(20 + 8*analyzer.NumStars + 11))

	for _, row := range d.Rows {
		sb.WriteString(fmt.Sprintf("%-20s", truncate(row.Group, 20)))
		for _, p := range row.Percent {
			sb.WriteString(fmt.Sprintf(" %6.1f%%", p))
		}
		sb.WriteString(fmt.Sprintf(" %10s\n", humanize.Comma(int64(row.Total))))
	}

	return sb.String()
}

func renderStarCounts(row analyzer.DistributionRow) string {
	maxCount := 0
	for _, c := range row.Counts {
		if c > maxCount {
			maxCount = c
		}
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-7s %-12s %-8s %s\n", "Stars", "Reviews", "Share", "Frequency"))
	sb.WriteString(rule(64))

	for i, c := range row.Counts {
		sb.WriteString(fmt.Sprintf("%-7s %-12s %-8s %s\n",
			starLabel(i),
			humanize.Comma(int64(c)),
			fmt.Sprintf("%.1f%%", row.Percent[i]),
			bar(float64(c), float64(maxCount), barWidth)))
	}

	sb.WriteString(rule(64))
	sb.WriteString(fmt.Sprintf("%-7s %s\n", "Total", humanize.Comma(int64(row.Total))))

	return sb.String()
}

// RenderTrendTable renders the mean rating per year, one column per label.
// Years in which a label has no reviews show "-".
func RenderTrendTable(t *analyzer.Trend) string {
	if t == nil || len(t.Rows) == 0 {
		return "No matching reviews found.\n"
	}

	const colWidth = 14

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s", "Year"))
	for _, label := range t.Labels {
		sb.WriteString(fmt.Sprintf(" %-*s", colWidth, truncate(label, colWidth)))
	}
	sb.WriteString("\n")
	sb.WriteString(rule(6 + (colWidth+1)*len(t.Labels)))

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-6d", row.Year))
		for _, label := range t.Labels {
			mean, ok := row.Means[label]
			if !ok {
				sb.WriteString(fmt.Sprintf(" %-*s", colWidth, "-"))
				continue
			}
			cell := fmt.Sprintf("%s (%s)", formatMean(mean), humanize.Comma(int64(row.Counts[label])))
			sb.WriteString(" " + colorize(ratingColor(mean), fmt.Sprintf("%-*s", colWidth, cell)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderImportTable renders the import ledger, newest first as given.
func RenderImportTable(runs []*store.ImportRun) string {
	if len(runs) == 0 {
		return "No imports found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-10s %-16s %-12s %-12s %s\n",
		"ID", "Imported", "Reviews", "Restaurants", "Source"))
	sb.WriteString(rule(88))

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-10s %-16s %-12s %-12s %s\n",
			truncate(run.ID, 8),
			formatRelativeTime(run.CreatedAt),
			humanize.Comma(int64(run.ReviewCount)),
			humanize.Comma(int64(run.RestaurantCount)),
			truncate(filepath.Base(run.ReviewsPath), 32)))
	}

	return sb.String()
}

// RenderReportTable renders the saved report ledger.
func RenderReportTable(reports []*store.Report) string {
	if len(reports) == 0 {
		return "No reports found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %-16s %-12s %-9s %s\n",
		"ID", "Created", "Reviews", "Workbook", "Path"))
	sb.WriteString(rule(88))

	for _, r := range reports {
		workbook := "no"
		if r.WorkbookPath != "" {
			workbook = "yes"
		}
		sb.WriteString(fmt.Sprintf("%-5d %-16s %-12s %-9s %s\n",
			r.ID,
			formatRelativeTime(r.CreatedAt),
			humanize.Comma(int64(r.ReviewCount)),
			workbook,
			r.ReportPath))
	}

	return sb.String()
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// bar returns a bar of up to width blocks proportional to value/max.
func bar(value, max float64, width int) string {
	if max <= 0 || value <= 0 || math.IsNaN(value) {
		return ""
	}
	n := int(math.Round(value / max * float64(width)))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

// formatMean formats a mean or deviation with two decimals; NaN is "n/a".
func formatMean(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func starLabel(i int) string {
	return strconv.Itoa(i+1) + "★"
}

func groupHeader(by analyzer.GroupBy) string {
	switch by {
	case analyzer.GroupByYear:
		return "Year"
	case analyzer.GroupByChain:
		return "Chain"
	default:
		return "Group"
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if time.Since(t) < time.Minute {
		return "just now"
	}
	return humanize.Time(t)
}

// truncate truncates a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
