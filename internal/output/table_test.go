package output

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

func TestRenderYearlyTable(t *testing.T) {
	tests := []struct {
		name     string
		rows     []analyzer.YearSummary
		contains []string
	}{
		{
			name:     "empty",
			rows:     nil,
			contains: []string{"No reviews found"},
		},
		{
			name: "two years",
			rows: []analyzer.YearSummary{
				{Year: 2019, AvgRating: 3.5, NumRatings: 1200},
				{Year: 2020, AvgRating: 4, NumRatings: 2},
			},
			contains: []string{"Year", "Avg Stars", "2019", "3.50", "1,200", "2020", "4.00", "█"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderYearlyTable(tt.rows)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("result should contain %q, got:\n%s", want, result)
				}
			}
		})
	}
}

func TestRenderYearlyTable_BarScale(t *testing.T) {
	result := RenderYearlyTable([]analyzer.YearSummary{
		{Year: 2018, AvgRating: 3, NumRatings: 100},
		{Year: 2019, AvgRating: 3, NumRatings: 50},
	})

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got %d lines", len(lines))
	}
	if got := strings.Count(lines[2], "█"); got != barWidth {
		t.Errorf("largest year bar = %d blocks, want %d", got, barWidth)
	}
	if got := strings.Count(lines[3], "█"); got != barWidth/2 {
		t.Errorf("half year bar = %d blocks, want %d", got, barWidth/2)
	}
}

func TestRenderComparisonTable(t *testing.T) {
	stats := []analyzer.GroupStats{
		{Group: "Competitor", Count: 1, Mean: 4, Std: math.NaN(), Min: 4, Max: 4},
		{Group: "Subway", Count: 3000, Mean: 3, Std: 2, Min: 1, Max: 5},
	}

	result := RenderComparisonTable("Subway vs competitors", stats)

	for _, want := range []string{"Subway vs competitors", "Group", "Competitor", "n/a", "3,000", "3.00", "2.00"} {
		if !strings.Contains(result, want) {
			t.Errorf("result should contain %q, got:\n%s", want, result)
		}
	}

	if got := RenderComparisonTable("x", nil); !strings.Contains(got, "No matching reviews") {
		t.Errorf("empty comparison = %q", got)
	}
}

func TestRenderDistributionTable_Ungrouped(t *testing.T) {
	d := &analyzer.Distribution{
		Rows: []analyzer.DistributionRow{{
			Group:   analyzer.AllGroup,
			Counts:  [analyzer.NumStars]int{1, 0, 1, 0, 2},
			Total:   4,
			Percent: [analyzer.NumStars]float64{25, 0, 25, 0, 50},
		}},
	}

	result := RenderDistributionTable(d)

	for _, want := range []string{"Stars", "1★", "5★", "25.0%", "50.0%", "Total"} {
		if !strings.Contains(result, want) {
			t.Errorf("result should contain %q, got:\n%s", want, result)
		}
	}
}

func TestRenderDistributionTable_Grouped(t *testing.T) {
	d := &analyzer.Distribution{
		By: analyzer.GroupByChain,
		Rows: []analyzer.DistributionRow{
			{
				Group:   "Local Chain",
				Counts:  [analyzer.NumStars]int{0, 0, 0, 1, 1},
				Total:   2,
				Percent: [analyzer.NumStars]float64{0, 0, 0, 50, 50},
			},
			{
				Group:   "National Chain",
				Counts:  [analyzer.NumStars]int{2500, 0, 0, 0, 0},
				Total:   2500,
				Percent: [analyzer.NumStars]float64{100, 0, 0, 0, 0},
			},
		},
	}

	result := RenderDistributionTable(d)

	for _, want := range []string{"Chain", "Local Chain", "National Chain", "50.0%", "100.0%", "2,500"} {
		if !strings.Contains(result, want) {
			t.Errorf("result should contain %q, got:\n%s", want, result)
		}
	}

	if got := RenderDistributionTable(nil); !strings.Contains(got, "No reviews found") {
		t.Errorf("nil distribution = %q", got)
	}
}

func TestRenderTrendTable(t *testing.T) {
	tr := &analyzer.Trend{
		Labels: []string{"Competitor", "Subway"},
		Rows: []analyzer.TrendRow{
			{
				Year:   2019,
				Means:  map[string]float64{"Competitor": 2, "Subway": 4},
				Counts: map[string]int{"Competitor": 1, "Subway": 2},
			},
			{
				Year:   2020,
				Means:  map[string]float64{"Subway": 4.5},
				Counts: map[string]int{"Subway": 2},
			},
		},
	}

	result := RenderTrendTable(tr)

	for _, want := range []string{"Year", "Competitor", "Subway", "2019", "4.00 (2)", "2.00 (1)", "4.50 (2)"} {
		if !strings.Contains(result, want) {
			t.Errorf("result should contain %q, got:\n%s", want, result)
		}
	}

	lines := strings.Split(strings.TrimSpace(result), "\n")
	last := strings.Fields(lines[len(lines)-1])
	if len(last) < 2 || last[1] != "-" {
		t.Errorf("missing cell should render as '-', got %q", lines[len(lines)-1])
	}
}

func TestRenderImportTable(t *testing.T) {
	runs := []*store.ImportRun{
		{
			ID:              "0b9d7f2e-1111-2222-3333-444455556666",
			CreatedAt:       time.Now().Add(-48 * time.Hour),
			ReviewsPath:     "/data/yelp/reviews.csv",
			RestaurantsPath: "/data/yelp/restaurants.csv",
			ReviewCount:     123456,
			RestaurantCount: 789,
		},
	}

	result := RenderImportTable(runs)

	for _, want := range []string{"ID", "Imported", "0b9d7...", "2 days ago", "123,456", "789", "reviews.csv"} {
		if !strings.Contains(result, want) {
			t.Errorf("result should contain %q, got:\n%s", want, result)
		}
	}

	if got := RenderImportTable(nil); !strings.Contains(got, "No imports found") {
		t.Errorf("empty ledger = %q", got)
	}
}

func TestRenderReportTable(t *testing.T) {
	reports := []*store.Report{
		{ID: 2, CreatedAt: time.Now(), ReportPath: "/r/2.json", WorkbookPath: "/r/2.xlsx", ReviewCount: 10},
		{ID: 1, CreatedAt: time.Now().Add(-time.Hour), ReportPath: "/r/1.json", ReviewCount: 5},
	}

	result := RenderReportTable(reports)

	for _, want := range []string{"Workbook", "/r/2.json", "yes", "no", "just now", "1 hour ago"} {
		if !strings.Contains(result, want) {
			t.Errorf("result should contain %q, got:\n%s", want, result)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	stats := []analyzer.GroupStats{{Group: "Subway", Count: 1, Mean: 5, Std: math.NaN(), Min: 5, Max: 5}}

	if err := WriteJSON(buf, stats); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"std": null`) {
		t.Errorf("NaN std should encode as null, got %s", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("output should end with a newline")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		value, max float64
		width      int
		want       int
	}{
		{0, 10, 10, 0},
		{10, 10, 10, 10},
		{5, 10, 10, 5},
		{0.01, 10, 10, 1},
		{20, 10, 10, 10},
		{1, 0, 10, 0},
		{math.NaN(), 5, 10, 0},
	}

	for _, tt := range tests {
		if got := strings.Count(bar(tt.value, tt.max, tt.width), "█"); got != tt.want {
			t.Errorf("bar(%v, %v, %d) = %d blocks, want %d", tt.value, tt.max, tt.width, got, tt.want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"days", now.Add(-3 * 24 * time.Hour), "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a very long restaurant name", 10, "a very ..."},
		{"abcdef", 3, "abc"},
		{"Café Olé Express", 8, "Café ..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
