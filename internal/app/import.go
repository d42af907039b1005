package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
	"github.com/blackwell-systems/ratingscope/internal/importer"
	"github.com/blackwell-systems/ratingscope/internal/output"
	"github.com/blackwell-systems/ratingscope/internal/watcher"
)

var (
	importReviews     string
	importRestaurants string
	importWatch       bool
	importQuiet       bool

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Load reviews and restaurants into the database",
		Long: `Read a reviews file and a restaurants file and replace the stored dataset
with their contents.

Both files may be CSV (with a header row) or JSON lines (.json, .jsonl,
.ndjson, one object per line with Yelp field names).

  reviews:      business_id, stars (1-5), date
  restaurants:  business_id, name, city, state (optional)

Rows with a bad date, a rating outside 1-5 or a missing column are rejected
with the file and line number, and the database is left unchanged.

With --watch the command keeps running and re-imports whenever either file
changes, until interrupted.`,
		Example: `  # Import CSV files
  ratingscope import --reviews reviews.csv --restaurants restaurants.csv

  # Import the Yelp JSON dataset and re-import on every change
  ratingscope import --reviews review.json --restaurants business.json --watch`,
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().StringVar(&importReviews, "reviews", "", "reviews file (CSV or JSON lines)")
	importCmd.Flags().StringVar(&importRestaurants, "restaurants", "", "restaurants file (CSV or JSON lines)")
	importCmd.Flags().BoolVar(&importWatch, "watch", false, "re-import whenever an input file changes")
	importCmd.Flags().BoolVar(&importQuiet, "quiet", false, "suppress output")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importReviews == "" || importRestaurants == "" {
		return fmt.Errorf("both --reviews and --restaurants are required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	im := importer.New(st)
	src := importer.Sources{Reviews: importReviews, Restaurants: importRestaurants}

	out := cmd.OutOrStdout()
	if importQuiet {
		out = io.Discard
	}

	if err := importOnce(cmd.Context(), im, src, out); err != nil {
		return err
	}

	if !importWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New([]string{src.Reviews, src.Restaurants}, cfg.WatchDebounce,
		func(ctx context.Context) error {
			fmt.Fprintln(out, "Input changed, re-importing...")
			return importOnce(ctx, im, src, out)
		})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching %s and %s (Ctrl+C to stop)\n", src.Reviews, src.Restaurants)
	return w.Run(ctx)
}

// importOnce runs one import, drawing a spinner while reading and a
// progress bar while storing.
func importOnce(ctx context.Context, im *importer.Importer, src importer.Sources, out io.Writer) error {
	spinner := output.NewSpinner(out, "Reading input files")
	progress := output.NewProgress(out, "Storing rows")

	run, err := im.Run(ctx, src, importer.Hooks{
		Loading: spinner.Start,
		Loaded: func(ds *dataset.Dataset) {
			spinner.StopWithMessage(fmt.Sprintf("Read %s reviews and %s restaurants",
				humanize.Comma(int64(len(ds.Reviews))),
				humanize.Comma(int64(len(ds.Restaurants)))))
		},
		Progress: progress.Update,
	})
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	progress.Finish()

	fmt.Fprintf(out, "✓ Imported %s reviews of %s restaurants (import %s)\n",
		humanize.Comma(int64(run.ReviewCount)),
		humanize.Comma(int64(run.RestaurantCount)),
		shortID(run.ID))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
