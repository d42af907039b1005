package dataset

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// LoadAll reads the reviews and restaurants files concurrently. The first
// failure cancels the other read.
func LoadAll(ctx context.Context, reviewsPath, restaurantsPath string) (*Dataset, error) {
	g, ctx := errgroup.WithContext(ctx)

	ds := &Dataset{}

	g.Go(func() error {
		reviews, err := ReadReviews(ctx, reviewsPath)
		if err != nil {
			return fmt.Errorf("failed to read reviews: %w", err)
		}
		ds.Reviews = reviews
		return nil
	})

	g.Go(func() error {
		restaurants, err := ReadRestaurants(ctx, restaurantsPath)
		if err != nil {
			return fmt.Errorf("failed to read restaurants: %w", err)
		}
		ds.Restaurants = restaurants
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ds, nil
}
