package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/output"
	"github.com/blackwell-systems/ratingscope/internal/report"
)

var (
	reportXLSX  bool
	reportList  bool
	reportShow  int64
	reportState string
	reportSplit bool

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Run every analysis and save the results",
		Long: `Run every analysis and save the derived tables as a JSON report in
~/.ratingscope/reports, and optionally as an Excel workbook with one sheet
per table.

Use --list to see saved reports and --show to print one again.`,
		Example: `  # Save a JSON report and a workbook
  ratingscope report --xlsx

  # List saved reports
  ratingscope report --list

  # Print saved report 3
  ratingscope report --show 3`,
		RunE: runReport,
	}
)

func init() {
	reportCmd.Flags().BoolVar(&reportXLSX, "xlsx", false, "also write an Excel workbook")
	reportCmd.Flags().BoolVar(&reportList, "list", false, "list saved reports")
	reportCmd.Flags().Int64Var(&reportShow, "show", 0, "print a saved report by ID")
	reportCmd.Flags().StringVar(&reportState, "state", "", "restrict brand and chain comparisons to this state")
	reportCmd.Flags().BoolVar(&reportSplit, "split", false, "report each competitor separately")

	RootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportList && reportShow != 0 {
		return fmt.Errorf("--list and --show cannot be used together")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	mgr := report.New(s.store, s.cfg.ReportDir)
	out := cmd.OutOrStdout()

	if reportList {
		if err := s.store.CreateSchema(); err != nil {
			return err
		}
		reports, err := mgr.List()
		if err != nil {
			return err
		}
		fmt.Fprint(out, output.RenderReportTable(reports))
		return nil
	}

	if reportShow != 0 {
		r, err := mgr.Load(reportShow)
		if err != nil {
			return err
		}
		fmt.Fprint(out, renderReport(r))
		return nil
	}

	if err := s.checkState(reportState); err != nil {
		return err
	}

	r, err := s.analyzer.BuildReport(analyzer.ReportOptions{
		Matcher:    s.matcher(),
		Thresholds: s.thresholds(),
		Window:     s.window(),
		State:      reportState,
		Split:      reportSplit,
	})
	if err != nil {
		return err
	}

	rec, err := mgr.Create(cmd.Context(), r, report.Options{Workbook: reportXLSX})
	if err != nil {
		return err
	}

	fmt.Fprint(out, renderReport(r))
	fmt.Fprintf(out, "\n✓ Saved report %d to %s\n", rec.ID, rec.ReportPath)
	if rec.WorkbookPath != "" {
		fmt.Fprintf(out, "✓ Saved workbook to %s\n", rec.WorkbookPath)
	}
	return nil
}

// renderReport prints every table of r, one section each.
func renderReport(r *analyzer.Report) string {
	m := analyzer.NewBrandMatcher(r.Brand, r.Competitors)

	sections := []struct {
		title string
		body  string
	}{
		{"Ratings per year", output.RenderYearlyTable(r.Yearly)},
		{brandTitle(m, r.State), output.RenderComparisonTable("", r.Brands)},
		{fmt.Sprintf("Chain size (national: more than %d cities)", r.NationalThreshold), output.RenderComparisonTable("", r.Chains)},
		{"Rating distribution", output.RenderDistributionTable(r.Ratings)},
		{"Rating distribution per year", output.RenderDistributionTable(r.RatingsByYear)},
		{"Rating distribution per chain category", output.RenderDistributionTable(r.RatingsByChain)},
		{"Brand trend", output.RenderTrendTable(r.Trend)},
	}

	var body string
	for i, s := range sections {
		if i > 0 {
			body += "\n"
		}
		body += s.title + "\n\n" + s.body
	}
	return body
}
