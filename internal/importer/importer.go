// Package importer loads the input files into the store and records each
// run in the import ledger.
package importer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

// Importer replaces the stored dataset with the contents of input files.
type Importer struct {
	store *store.Store
}

// New creates a new Importer instance with the given store.
func New(store *store.Store) *Importer {
	return &Importer{store: store}
}

// Sources names the two input files of an import.
type Sources struct {
	Reviews     string
	Restaurants string
}

// Hooks report progress. Any of them may be nil.
type Hooks struct {
	// Loading is called before the files are read.
	Loading func()
	// Loaded is called once both files are parsed.
	Loaded func(ds *dataset.Dataset)
	// Progress is passed to the store while rows are written.
	Progress store.ProgressFunc
}

// Run reads both files, atomically replaces the stored dataset and records
// the run. Nothing is written when either file fails to load.
func (im *Importer) Run(ctx context.Context, src Sources, hooks Hooks) (*store.ImportRun, error) {
	reviewsPath, err := filepath.Abs(src.Reviews)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", src.Reviews, err)
	}
	restaurantsPath, err := filepath.Abs(src.Restaurants)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", src.Restaurants, err)
	}

	if err := im.store.CreateSchema(); err != nil {
		return nil, err
	}

	if hooks.Loading != nil {
		hooks.Loading()
	}

	ds, err := dataset.LoadAll(ctx, reviewsPath, restaurantsPath)
	if err != nil {
		return nil, err
	}

	if hooks.Loaded != nil {
		hooks.Loaded(ds)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := im.store.ReplaceDataset(ds, hooks.Progress); err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	run := &store.ImportRun{
		ReviewsPath:     reviewsPath,
		RestaurantsPath: restaurantsPath,
		ReviewCount:     len(ds.Reviews),
		RestaurantCount: len(ds.Restaurants),
	}
	if err := im.store.InsertImport(run); err != nil {
		return nil, err
	}

	return run, nil
}
