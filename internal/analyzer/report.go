package analyzer

import (
	"fmt"
	"time"
)

// ReportOptions selects what goes into a Report.
type ReportOptions struct {
	Matcher    *BrandMatcher
	Thresholds ChainThresholds
	Window     YearWindow // per-year distribution window
	State      string     // restricts the brand and chain comparisons
	Split      bool       // report competitors separately
}

// Report bundles every derived table of one run.
type Report struct {
	GeneratedAt       time.Time     `json:"generated_at"`
	Brand             string        `json:"brand"`
	Competitors       []string      `json:"competitors"`
	NationalThreshold int           `json:"national_threshold"`
	State             string        `json:"state,omitempty"`
	ReviewCount       int           `json:"review_count"`
	RestaurantCount   int           `json:"restaurant_count"`
	Yearly            []YearSummary `json:"yearly"`
	Brands            []GroupStats  `json:"brands"`
	Chains            []GroupStats  `json:"chains"`
	Ratings           *Distribution `json:"ratings"`
	RatingsByYear     *Distribution `json:"ratings_by_year"`
	RatingsByChain    *Distribution `json:"ratings_by_chain"`
	Trend             *Trend        `json:"trend"`
	Window            YearWindow    `json:"window"`
}

// BuildReport runs every analysis.
func (a *Analyzer) BuildReport(opts ReportOptions) (*Report, error) {
	if opts.Matcher == nil {
		return nil, fmt.Errorf("brand matcher is required")
	}

	reviewCount, restaurantCount, err := a.store.Counts()
	if err != nil {
		return nil, err
	}

	r := &Report{
		GeneratedAt:       time.Now().UTC().Truncate(time.Second),
		Brand:             opts.Matcher.Brand(),
		Competitors:       opts.Matcher.Competitors(),
		NationalThreshold: opts.Thresholds.National,
		State:             opts.State,
		ReviewCount:       reviewCount,
		RestaurantCount:   restaurantCount,
		Window:            opts.Window,
	}

	if r.Yearly, err = a.Yearly(); err != nil {
		return nil, fmt.Errorf("yearly summary: %w", err)
	}
	if r.Brands, err = a.CompareBrands(opts.Matcher, opts.State, opts.Split); err != nil {
		return nil, fmt.Errorf("brand comparison: %w", err)
	}
	if r.Chains, err = a.CompareChains(opts.Thresholds, opts.State); err != nil {
		return nil, fmt.Errorf("chain comparison: %w", err)
	}
	if r.Ratings, err = a.Distribution(GroupByNone, YearWindow{}, opts.Thresholds); err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	if r.RatingsByYear, err = a.Distribution(GroupByYear, opts.Window, opts.Thresholds); err != nil {
		return nil, fmt.Errorf("rating distribution by year: %w", err)
	}
	if r.RatingsByChain, err = a.Distribution(GroupByChain, YearWindow{}, opts.Thresholds); err != nil {
		return nil, fmt.Errorf("rating distribution by chain: %w", err)
	}
	if r.Trend, err = a.Trend(opts.Matcher, opts.State, opts.Split); err != nil {
		return nil, fmt.Errorf("brand trend: %w", err)
	}

	return r, nil
}
