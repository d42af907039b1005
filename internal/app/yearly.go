package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/output"
)

var (
	yearlyFormat string

	yearlyCmd = &cobra.Command{
		Use:   "yearly",
		Short: "Show the average rating and review count per year",
		Long: `Group every review by the calendar year of its date and show the mean
rating and the number of reviews per year. Years without reviews are not
listed.`,
		Example: `  ratingscope yearly
  ratingscope yearly --format json`,
		RunE: runYearly,
	}
)

func init() {
	yearlyCmd.Flags().StringVar(&yearlyFormat, "format", formatText, "output format: text or json")

	RootCmd.AddCommand(yearlyCmd)
}

func runYearly(cmd *cobra.Command, args []string) error {
	if err := validateFormat(yearlyFormat); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.analyzer.Yearly()
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), yearlyFormat, rows, func() string {
		return output.RenderYearlyTable(rows)
	})
}
