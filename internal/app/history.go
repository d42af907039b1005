package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/output"
)

var (
	historyFormat string

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List past imports",
		Long:  `List every import run, newest first, with its source files and row counts.`,
		RunE:  runHistory,
	}
)

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", formatText, "output format: text or json")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := validateFormat(historyFormat); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.store.ListImports()
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), historyFormat, runs, func() string {
		return output.RenderImportTable(runs)
	})
}
