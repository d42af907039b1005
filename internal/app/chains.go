package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/output"
)

var (
	chainsState  string
	chainsFormat string

	chainsCmd = &cobra.Command{
		Use:   "chains",
		Short: "Compare national, regional and local chains",
		Long: `Count the distinct cities each restaurant name appears in and classify it:

  National Chain   more cities than the national threshold (default 50)
  Local Chain      exactly one city
  Regional Chain   anything else

Then compare the ratings of each category. City counts always use every
restaurant; --state only restricts which reviews are compared.`,
		Example: `  ratingscope chains
  ratingscope chains --state AZ --format json`,
		RunE: runChains,
	}
)

func init() {
	chainsCmd.Flags().StringVar(&chainsState, "state", "", "only reviews of restaurants in this state")
	chainsCmd.Flags().StringVar(&chainsFormat, "format", formatText, "output format: text or json")

	RootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) error {
	if err := validateFormat(chainsFormat); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.checkState(chainsState); err != nil {
		return err
	}

	stats, err := s.analyzer.CompareChains(s.thresholds(), chainsState)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Chain size (national: more than %d cities)", s.cfg.NationalThreshold)
	if chainsState != "" {
		title += " in " + chainsState
	}

	return render(cmd.OutOrStdout(), chainsFormat, stats, func() string {
		return output.RenderComparisonTable(title, stats)
	})
}
