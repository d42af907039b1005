package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/output"
)

var (
	distributionBy     string
	distributionFrom   int
	distributionTo     int
	distributionFormat string

	distributionCmd = &cobra.Command{
		Use:   "distribution",
		Short: "Show how ratings are distributed over 1-5 stars",
		Long: `Count the reviews per star value. Every star value is listed, with zero
for values nobody gave.

  --by none    one table over all reviews (default)
  --by year    one row per year, as percentages of that year's reviews
  --by chain   one row per chain category, as percentages

--by year is limited to the configured window (2018-2021 by default)
unless --from or --to is given.`,
		Example: `  ratingscope distribution
  ratingscope distribution --by year --from 2015 --to 2021
  ratingscope distribution --by chain --format json`,
		RunE: runDistribution,
	}
)

func init() {
	distributionCmd.Flags().StringVar(&distributionBy, "by", "none", "grouping: none, year or chain")
	distributionCmd.Flags().IntVar(&distributionFrom, "from", 0, "first year to include")
	distributionCmd.Flags().IntVar(&distributionTo, "to", 0, "last year to include")
	distributionCmd.Flags().StringVar(&distributionFormat, "format", formatText, "output format: text or json")

	RootCmd.AddCommand(distributionCmd)
}

func parseGroupBy(s string) (analyzer.GroupBy, error) {
	switch s {
	case "", "none":
		return analyzer.GroupByNone, nil
	case "year":
		return analyzer.GroupByYear, nil
	case "chain":
		return analyzer.GroupByChain, nil
	default:
		return "", fmt.Errorf("invalid grouping %q (must be none, year or chain)", s)
	}
}

func runDistribution(cmd *cobra.Command, args []string) error {
	if err := validateFormat(distributionFormat); err != nil {
		return err
	}

	by, err := parseGroupBy(distributionBy)
	if err != nil {
		return err
	}

	if distributionFrom != 0 && distributionTo != 0 && distributionFrom > distributionTo {
		return fmt.Errorf("invalid year window: --from %d is after --to %d", distributionFrom, distributionTo)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	window := analyzer.YearWindow{From: distributionFrom, To: distributionTo}
	explicit := cmd.Flags().Changed("from") || cmd.Flags().Changed("to")
	if by == analyzer.GroupByYear && !explicit {
		window = s.window()
	}

	d, err := s.analyzer.Distribution(by, window, s.thresholds())
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), distributionFormat, d, func() string {
		return output.RenderDistributionTable(d)
	})
}
