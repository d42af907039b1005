package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/output"
)

var (
	trendState  string
	trendSplit  bool
	trendFormat string

	trendCmd = &cobra.Command{
		Use:   "trend",
		Short: "Show the brand's mean rating per year next to its competitors",
		Long: `Show the mean rating per year of the brand and of its competitors, with
the number of reviews in parentheses. A "-" means no reviews that year.`,
		Example: `  ratingscope trend
  ratingscope trend --split --state FL`,
		RunE: runTrend,
	}
)

func init() {
	trendCmd.Flags().StringVar(&trendState, "state", "", "only restaurants in this state")
	trendCmd.Flags().BoolVar(&trendSplit, "split", false, "one column per competitor")
	trendCmd.Flags().StringVar(&trendFormat, "format", formatText, "output format: text or json")

	RootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	if err := validateFormat(trendFormat); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.checkState(trendState); err != nil {
		return err
	}

	t, err := s.analyzer.Trend(s.matcher(), trendState, trendSplit)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), trendFormat, t, func() string {
		return output.RenderTrendTable(t)
	})
}
