package analyzer

import (
	"fmt"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

// Analyzer derives the comparison tables from the reviews and restaurants
// held in a store. The derivations themselves are the pure functions of this
// package; Analyzer only chooses which rows each one is fed.
type Analyzer struct {
	store *store.Store
}

// New creates a new Analyzer instance with the given store.
func New(store *store.Store) *Analyzer {
	return &Analyzer{store: store}
}

// Yearly returns the yearly summary over all reviews.
func (a *Analyzer) Yearly() ([]YearSummary, error) {
	reviews, err := a.store.ListReviews()
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return YearlySummary(reviews), nil
}

// CompareBrands compares the brand with its competitors. With split set,
// each competitor pattern is reported separately instead of as one group.
func (a *Analyzer) CompareBrands(m *BrandMatcher, state string, split bool) ([]GroupStats, error) {
	reviews, labels, err := a.brandInputs(m, state, split)
	if err != nil {
		return nil, err
	}
	return CompareGroups(reviews, ByBusiness(labels)), nil
}

// CompareChains compares national, regional and local chains.
func (a *Analyzer) CompareChains(th ChainThresholds, state string) ([]GroupStats, error) {
	reviews, labels, err := a.chainInputs(th, state)
	if err != nil {
		return nil, err
	}
	return CompareGroups(reviews, ByBusiness(labels)), nil
}

// Distribution returns the rating distribution over all reviews, or over
// the reviews inside window when it is set. GroupByYear and GroupByChain
// cross-tabulate it.
func (a *Analyzer) Distribution(by GroupBy, window YearWindow, th ChainThresholds) (*Distribution, error) {
	switch by {
	case GroupByNone, GroupByYear:
		reviews, err := a.store.ListReviews()
		if err != nil {
			return nil, fmt.Errorf("failed to load reviews: %w", err)
		}
		reviews = FilterYears(reviews, window)
		if by == GroupByYear {
			return RatingDistribution(reviews, by, ByYear), nil
		}
		return RatingDistribution(reviews, by, nil), nil

	case GroupByChain:
		reviews, labels, err := a.chainInputs(th, "")
		if err != nil {
			return nil, err
		}
		reviews = FilterYears(reviews, window)
		return RatingDistribution(reviews, by, ByBusiness(labels)), nil

	default:
		return nil, fmt.Errorf("unknown grouping %q", by)
	}
}

// Trend returns the yearly mean rating of the brand and its competitors.
func (a *Analyzer) Trend(m *BrandMatcher, state string, split bool) (*Trend, error) {
	reviews, labels, err := a.brandInputs(m, state, split)
	if err != nil {
		return nil, err
	}
	return BrandTrend(reviews, ByBusiness(labels)), nil
}

// brandInputs loads the joined reviews and the business_id -> brand label
// lookup.
func (a *Analyzer) brandInputs(m *BrandMatcher, state string, split bool) ([]dataset.Review, map[string]string, error) {
	restaurants, err := a.store.ListRestaurants()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load restaurants: %w", err)
	}

	reviews, err := a.store.ListReviewsWithState(state)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	return reviews, BrandLabels(ClassifyBrands(restaurants, m), split), nil
}

// chainInputs loads the joined reviews and the business_id -> chain category
// lookup. City counts always use every restaurant, whatever the state filter.
func (a *Analyzer) chainInputs(th ChainThresholds, state string) ([]dataset.Review, map[string]string, error) {
	restaurants, err := a.store.ListRestaurants()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load restaurants: %w", err)
	}

	reviews, err := a.store.ListReviewsWithState(state)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	scopes := ClassifyChainScope(restaurants, th)
	categories := ChainCategories(restaurants, scopes)

	labels := make(map[string]string, len(categories))
	for id, c := range categories {
		labels[id] = string(c)
	}

	return reviews, labels, nil
}
