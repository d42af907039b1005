package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

const testRestaurants = `business_id,name,city,state
sub1,Subway,Tampa,FL
sub2,Subway,Reno,NV
jj1,Jimmy John's,Reno,NV
jm1,Jersey Mike's,Sparks,NV
deli,Corner Deli,Tampa,FL
`

const testReviews = `business_id,stars,date
sub1,5,2020-01-01
sub1,3,2020-06-01
sub2,2,2019-06-01
jj1,4,2019-06-01
jm1,5,2021-06-01
deli,1,2017-06-01
missing,5,2020-06-01
`

// resetFlags restores every flag of cmd and its subcommands to its default.
// Cobra keeps flag values between executions in the same process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// testEnv isolates configuration and data in temp dirs.
type testEnv struct {
	dir     string
	db      string
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	env := &testEnv{
		dir:     dir,
		db:      filepath.Join(dir, "ratingscope.db"),
		dataDir: filepath.Join(dir, "data"),
	}

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("RATINGSCOPE_DATA_DIR", env.dataDir)
	t.Setenv("RATINGSCOPE_DB", "")
	t.Setenv("RATINGSCOPE_BRAND", "")
	t.Setenv("RATINGSCOPE_COMPETITORS", "")
	t.Setenv("RATINGSCOPE_NATIONAL_THRESHOLD", "")
	t.Setenv("RATINGSCOPE_WATCH_DEBOUNCE", "")
	t.Setenv("NO_COLOR", "1")

	return env
}

// run executes the CLI with --db pointing at the test database.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--db", e.db}, args...))
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	}()

	err := RootCmd.Execute()
	return out.String(), err
}

func (e *testEnv) writeInputs(t *testing.T, reviews, restaurants string) (string, string) {
	t.Helper()
	reviewsPath := filepath.Join(e.dir, "reviews.csv")
	restaurantsPath := filepath.Join(e.dir, "restaurants.csv")
	if err := os.WriteFile(reviewsPath, []byte(reviews), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(restaurantsPath, []byte(restaurants), 0644); err != nil {
		t.Fatal(err)
	}
	return reviewsPath, restaurantsPath
}

// imported returns an environment with the test dataset loaded.
func imported(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	reviews, restaurants := env.writeInputs(t, testReviews, testRestaurants)

	if _, err := env.run(t, "import", "--reviews", reviews, "--restaurants", restaurants, "--quiet"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	return env
}

func TestImportCommand(t *testing.T) {
	env := newTestEnv(t)
	reviews, restaurants := env.writeInputs(t, testReviews, testRestaurants)

	out, err := env.run(t, "import", "--reviews", reviews, "--restaurants", restaurants)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	for _, want := range []string{
		"Reading input files...",
		"Read 7 reviews and 5 restaurants",
		"✓ Imported 7 reviews of 5 restaurants",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	if _, err := os.Stat(env.db); err != nil {
		t.Errorf("expected database at %s: %v", env.db, err)
	}
}

func TestImportCommand_Quiet(t *testing.T) {
	env := newTestEnv(t)
	reviews, restaurants := env.writeInputs(t, testReviews, testRestaurants)

	out, err := env.run(t, "import", "--reviews", reviews, "--restaurants", restaurants, "--quiet")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected no output with --quiet, got:\n%s", out)
	}
}

func TestImportCommand_MissingFlags(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "import", "--reviews", "reviews.csv")
	if err == nil {
		t.Fatal("expected error without --restaurants")
	}
	if !strings.Contains(err.Error(), "--restaurants") {
		t.Errorf("expected error to mention --restaurants, got: %v", err)
	}
}

func TestImportCommand_BadRowKeepsPreviousData(t *testing.T) {
	env := imported(t)

	bad := "business_id,stars,date\nsub1,5,2020-01-01\nsub1,7,2020-02-01\n"
	reviews, restaurants := env.writeInputs(t, bad, testRestaurants)

	_, err := env.run(t, "import", "--reviews", reviews, "--restaurants", restaurants, "--quiet")
	if err == nil {
		t.Fatal("expected import of an out-of-range rating to fail")
	}
	if !strings.Contains(err.Error(), "reviews.csv:3:") {
		t.Errorf("expected error to name line 3 of reviews.csv, got: %v", err)
	}

	out, err := env.run(t, "yearly", "--format", "json")
	if err != nil {
		t.Fatalf("yearly failed: %v", err)
	}
	var rows []analyzer.YearSummary
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	total := 0
	for _, r := range rows {
		total += r.NumRatings
	}
	if total != 7 {
		t.Errorf("expected the previous 7 reviews to remain, got %d", total)
	}
}

func TestYearlyCommand_NotInitialized(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "yearly")
	if err == nil {
		t.Fatal("expected error before any import")
	}
	if !errors.Is(err, store.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got: %v", err)
	}
}

func TestYearlyCommand(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "yearly", "--format", "json")
	if err != nil {
		t.Fatalf("yearly failed: %v", err)
	}

	var rows []analyzer.YearSummary
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	want := map[int]int{2017: 1, 2019: 2, 2020: 3, 2021: 1}
	if len(rows) != len(want) {
		t.Fatalf("expected %d years, got %d: %+v", len(want), len(rows), rows)
	}
	for _, r := range rows {
		if want[r.Year] != r.NumRatings {
			t.Errorf("year %d: NumRatings = %d, want %d", r.Year, r.NumRatings, want[r.Year])
		}
	}

	text, err := env.run(t, "yearly")
	if err != nil {
		t.Fatalf("yearly failed: %v", err)
	}
	if !strings.Contains(text, "Avg Stars") || !strings.Contains(text, "2020") {
		t.Errorf("unexpected text output:\n%s", text)
	}
}

func TestYearlyCommand_InvalidFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "yearly", "--format", "xml")
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("expected 'invalid format' error, got: %v", err)
	}
}

func TestCompareCommand(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "compare", "--format", "json")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	var stats []analyzer.GroupStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	counts := make(map[string]int)
	for _, g := range stats {
		counts[g.Group] = g.Count
	}
	if counts["Subway"] != 3 {
		t.Errorf("Subway count = %d, want 3", counts["Subway"])
	}
	if counts[analyzer.CompetitorLabel] != 2 {
		t.Errorf("%s count = %d, want 2", analyzer.CompetitorLabel, counts[analyzer.CompetitorLabel])
	}
}

func TestCompareCommand_SplitAndState(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "compare", "--split", "--state", "NV", "--format", "json")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	var stats []analyzer.GroupStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	counts := make(map[string]int)
	for _, g := range stats {
		counts[g.Group] = g.Count
	}
	want := map[string]int{"Subway": 1, "Jimmy John": 1, "Jersey Mike": 1}
	for group, n := range want {
		if counts[group] != n {
			t.Errorf("%s count = %d, want %d (got %+v)", group, counts[group], n, counts)
		}
	}

	text, err := env.run(t, "compare", "--state", "NV")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !strings.Contains(text, "Subway vs Jimmy John, Jersey Mike in NV") {
		t.Errorf("expected title in text output, got:\n%s", text)
	}
}

func TestStateFlag_UnknownState(t *testing.T) {
	env := imported(t)

	for _, command := range []string{"compare", "chains", "trend", "report"} {
		t.Run(command, func(t *testing.T) {
			_, err := env.run(t, command, "--state", "TX")
			if err == nil {
				t.Fatalf("%s --state TX should fail", command)
			}
			if !strings.Contains(err.Error(), `unknown state "TX"`) || !strings.Contains(err.Error(), "FL, NV") {
				t.Errorf("expected the known states in the error, got: %v", err)
			}
		})
	}

	list, err := env.run(t, "report", "--list")
	if err != nil {
		t.Fatalf("report --list failed: %v", err)
	}
	if !strings.Contains(list, "No reports found.") {
		t.Errorf("a rejected state should not save a report, got:\n%s", list)
	}
}

func TestChainsCommand(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "chains", "--format", "json")
	if err != nil {
		t.Fatalf("chains failed: %v", err)
	}

	var stats []analyzer.GroupStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	counts := make(map[string]int)
	for _, g := range stats {
		counts[g.Group] = g.Count
	}
	if counts[string(analyzer.RegionalChain)] != 3 {
		t.Errorf("Regional Chain count = %d, want 3", counts[string(analyzer.RegionalChain)])
	}
	if counts[string(analyzer.LocalChain)] != 3 {
		t.Errorf("Local Chain count = %d, want 3", counts[string(analyzer.LocalChain)])
	}
	if _, ok := counts[string(analyzer.NationalChain)]; ok {
		t.Error("expected no National Chain group")
	}

	text, err := env.run(t, "chains")
	if err != nil {
		t.Fatalf("chains failed: %v", err)
	}
	if !strings.Contains(text, "more than 50 cities") {
		t.Errorf("expected threshold in title, got:\n%s", text)
	}
}

func TestDistributionCommand(t *testing.T) {
	env := imported(t)

	tests := []struct {
		name     string
		args     []string
		wantRows int
	}{
		{"ungrouped", nil, 1},
		{"by year uses configured window", []string{"--by", "year"}, 3},
		{"by year with explicit window", []string{"--by", "year", "--from", "2017", "--to", "2021"}, 4},
		{"by year with only --to", []string{"--by", "year", "--to", "2019"}, 2},
		{"by chain", []string{"--by", "chain"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"distribution", "--format", "json"}, tt.args...)
			out, err := env.run(t, args...)
			if err != nil {
				t.Fatalf("distribution failed: %v", err)
			}

			var d analyzer.Distribution
			if err := json.Unmarshal([]byte(out), &d); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, out)
			}
			if len(d.Rows) != tt.wantRows {
				t.Errorf("expected %d rows, got %d: %+v", tt.wantRows, len(d.Rows), d.Rows)
			}
		})
	}
}

func TestDistributionCommand_Text(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "distribution")
	if err != nil {
		t.Fatalf("distribution failed: %v", err)
	}
	for _, want := range []string{"1★", "5★", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDistributionCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid grouping", []string{"--by", "state"}, "invalid grouping"},
		{"inverted window", []string{"--by", "year", "--from", "2021", "--to", "2018"}, "invalid year window"},
		{"invalid format", []string{"--format", "csv"}, "invalid format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, append([]string{"distribution"}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestTrendCommand(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "trend", "--format", "json")
	if err != nil {
		t.Fatalf("trend failed: %v", err)
	}

	var trend analyzer.Trend
	if err := json.Unmarshal([]byte(out), &trend); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(trend.Rows) != 3 {
		t.Fatalf("expected 3 years (2019-2021), got %d: %+v", len(trend.Rows), trend.Rows)
	}

	for _, row := range trend.Rows {
		if row.Year == 2020 {
			if row.Means["Subway"] != 4 {
				t.Errorf("Subway mean in 2020 = %v, want 4", row.Means["Subway"])
			}
			if _, ok := row.Means[analyzer.CompetitorLabel]; ok {
				t.Errorf("expected no competitor reviews in 2020")
			}
		}
	}

	text, err := env.run(t, "trend")
	if err != nil {
		t.Fatalf("trend failed: %v", err)
	}
	if !strings.Contains(text, "4.00 (2)") {
		t.Errorf("expected Subway 2020 cell in text output, got:\n%s", text)
	}
}

func TestHistoryCommand(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "reviews.csv") {
		t.Errorf("expected source file in history, got:\n%s", out)
	}

	jsonOut, err := env.run(t, "history", "--format", "json")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	var runs []store.ImportRun
	if err := json.Unmarshal([]byte(jsonOut), &runs); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, jsonOut)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 import, got %d", len(runs))
	}
	if runs[0].ReviewCount != 7 || runs[0].RestaurantCount != 5 {
		t.Errorf("unexpected counts: %+v", runs[0])
	}
}

func TestReportCommand(t *testing.T) {
	env := imported(t)

	out, err := env.run(t, "report", "--xlsx")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	for _, want := range []string{
		"Ratings per year",
		"Subway vs Jimmy John, Jersey Mike",
		"Rating distribution per chain category",
		"Brand trend",
		"✓ Saved report 1 to",
		"✓ Saved workbook to",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	reportDir := filepath.Join(env.dataDir, "reports")
	jsonFiles, _ := filepath.Glob(filepath.Join(reportDir, "*.json"))
	if len(jsonFiles) != 1 {
		t.Errorf("expected 1 JSON report in %s, got %d", reportDir, len(jsonFiles))
	}
	xlsxFiles, _ := filepath.Glob(filepath.Join(reportDir, "*.xlsx"))
	if len(xlsxFiles) != 1 {
		t.Errorf("expected 1 workbook in %s, got %d", reportDir, len(xlsxFiles))
	}

	list, err := env.run(t, "report", "--list")
	if err != nil {
		t.Fatalf("report --list failed: %v", err)
	}
	if !strings.Contains(list, "yes") || !strings.Contains(list, reportDir) {
		t.Errorf("expected saved report in list, got:\n%s", list)
	}

	shown, err := env.run(t, "report", "--show", "1")
	if err != nil {
		t.Fatalf("report --show failed: %v", err)
	}
	if !strings.Contains(shown, "Ratings per year") {
		t.Errorf("expected report sections, got:\n%s", shown)
	}
	if strings.Contains(shown, "Saved report") {
		t.Error("--show should not save another report")
	}
}

func TestReportCommand_ListEmpty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "report", "--list")
	if err != nil {
		t.Fatalf("report --list failed: %v", err)
	}
	if !strings.Contains(out, "No reports found.") {
		t.Errorf("expected empty list, got:\n%s", out)
	}
}

func TestReportCommand_ListAndShowConflict(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "report", "--list", "--show", "1")
	if err == nil {
		t.Fatal("expected error for --list with --show")
	}
}

func TestParseGroupBy(t *testing.T) {
	tests := []struct {
		in      string
		want    analyzer.GroupBy
		wantErr bool
	}{
		{"", analyzer.GroupByNone, false},
		{"none", analyzer.GroupByNone, false},
		{"year", analyzer.GroupByYear, false},
		{"chain", analyzer.GroupByChain, false},
		{"city", "", true},
	}

	for _, tt := range tests {
		got, err := parseGroupBy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseGroupBy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseGroupBy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBrandTitle(t *testing.T) {
	m := analyzer.NewBrandMatcher("Subway", []string{"Jimmy John", "Jersey Mike"})

	if got := brandTitle(m, ""); got != "Subway vs Jimmy John, Jersey Mike" {
		t.Errorf("brandTitle() = %q", got)
	}
	if got := brandTitle(m, "NV"); got != "Subway vs Jimmy John, Jersey Mike in NV" {
		t.Errorf("brandTitle() with state = %q", got)
	}
}
