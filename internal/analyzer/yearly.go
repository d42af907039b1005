package analyzer

import (
	"sort"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
)

// YearlySummary groups reviews by calendar year and returns the mean and
// count of stars per year, ascending. Years without reviews are absent.
func YearlySummary(reviews []dataset.Review) []YearSummary {
	byYear := make(map[int]*accumulator)
	for _, r := range reviews {
		y := r.Year()
		acc, ok := byYear[y]
		if !ok {
			acc = &accumulator{}
			byYear[y] = acc
		}
		acc.add(r.Stars)
	}

	summary := make([]YearSummary, 0, len(byYear))
	for y, acc := range byYear {
		summary = append(summary, YearSummary{
			Year:       y,
			AvgRating:  acc.Mean(),
			NumRatings: acc.count,
		})
	}

	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Year < summary[j].Year
	})

	return summary
}

// FilterYears returns the reviews whose year falls inside w. The input is
// not modified.
func FilterYears(reviews []dataset.Review, w YearWindow) []dataset.Review {
	if w.IsZero() {
		return reviews
	}

	filtered := make([]dataset.Review, 0, len(reviews))
	for _, r := range reviews {
		if w.Contains(r.Year()) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
