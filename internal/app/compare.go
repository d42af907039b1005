package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/output"
)

var (
	compareState  string
	compareSplit  bool
	compareFormat string

	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "Compare the brand's ratings with its competitors",
		Long: `Classify every restaurant by a case-insensitive substring match of its
name: the configured brand, one of the competitors, or neither. Then compare
the mean, standard deviation and range of the ratings of each group.

A name that matches both the brand and a competitor counts as the brand.
A name that matches several competitors counts as the first one configured.
Restaurants matching neither are left out.`,
		Example: `  # Brand vs all competitors together
  ratingscope compare

  # One row per competitor, Nevada only
  ratingscope compare --split --state NV`,
		RunE: runCompare,
	}
)

func init() {
	compareCmd.Flags().StringVar(&compareState, "state", "", "only restaurants in this state")
	compareCmd.Flags().BoolVar(&compareSplit, "split", false, "report each competitor separately")
	compareCmd.Flags().StringVar(&compareFormat, "format", formatText, "output format: text or json")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := validateFormat(compareFormat); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.checkState(compareState); err != nil {
		return err
	}

	m := s.matcher()
	stats, err := s.analyzer.CompareBrands(m, compareState, compareSplit)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), compareFormat, stats, func() string {
		return output.RenderComparisonTable(brandTitle(m, compareState), stats)
	})
}
