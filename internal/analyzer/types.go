package analyzer

import (
	"encoding/json"
	"math"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
)

// NumStars is the size of the star domain (1-5).
const NumStars = dataset.MaxStars - dataset.MinStars + 1

// YearSummary is one row of the yearly trend.
type YearSummary struct {
	Year       int     `json:"year"`
	AvgRating  float64 `json:"avg_rating"`
	NumRatings int     `json:"num_ratings"`
}

// GroupStats summarizes the ratings of one group.
type GroupStats struct {
	Group string  `json:"group"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"` // sample standard deviation, NaN when Count < 2
	Min   int     `json:"min"`
	Max   int     `json:"max"`
}

// MarshalJSON encodes an undefined standard deviation as null.
func (g GroupStats) MarshalJSON() ([]byte, error) {
	type plain GroupStats
	out := struct {
		plain
		Std *float64 `json:"std"`
	}{plain: plain(g)}
	if !math.IsNaN(g.Std) {
		out.Std = &g.Std
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a null standard deviation back to NaN.
func (g *GroupStats) UnmarshalJSON(data []byte) error {
	type plain GroupStats
	var in struct {
		plain
		Std *float64 `json:"std"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*g = GroupStats(in.plain)
	g.Std = math.NaN()
	if in.Std != nil {
		g.Std = *in.Std
	}
	return nil
}

// GroupBy selects the cross-tabulation key of a rating distribution.
type GroupBy string

const (
	GroupByNone  GroupBy = ""
	GroupByYear  GroupBy = "year"
	GroupByChain GroupBy = "chain"
)

// AllGroup is the group name of an ungrouped distribution.
const AllGroup = "all"

// Distribution is a frequency table over the star domain, one row per group.
type Distribution struct {
	By   GroupBy           `json:"by"`
	Rows []DistributionRow `json:"rows"`
}

// DistributionRow holds the counts of one group. Counts[i] and Percent[i]
// belong to the rating i+1.
type DistributionRow struct {
	Group   string            `json:"group"`
	Counts  [NumStars]int     `json:"counts"`
	Total   int               `json:"total"`
	Percent [NumStars]float64 `json:"percent"`
}

// Trend is the mean rating per year and label. Rows are sorted by year;
// a label with no reviews in a year is absent from that row's maps.
type Trend struct {
	Labels []string   `json:"labels"`
	Rows   []TrendRow `json:"rows"`
}

// TrendRow is one year of a Trend.
type TrendRow struct {
	Year   int                `json:"year"`
	Means  map[string]float64 `json:"means"`
	Counts map[string]int     `json:"counts"`
}

// YearWindow is an inclusive range of years. A zero bound is open.
type YearWindow struct {
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// Contains reports whether year falls inside the window.
func (w YearWindow) Contains(year int) bool {
	if w.From != 0 && year < w.From {
		return false
	}
	if w.To != 0 && year > w.To {
		return false
	}
	return true
}

// IsZero reports whether the window is unbounded.
func (w YearWindow) IsZero() bool {
	return w.From == 0 && w.To == 0
}

// LabelFunc assigns a review to a group. ok is false for reviews that belong
// to no group; those are left out of the table.
type LabelFunc func(r dataset.Review) (label string, ok bool)
