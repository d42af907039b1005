package analyzer

import (
	"sort"
	"strconv"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
)

// ByYear labels a review with its year.
func ByYear(r dataset.Review) (string, bool) {
	return strconv.Itoa(r.Year()), true
}

// ByBusiness labels a review through a business_id lookup. Reviews of
// businesses missing from labels are left out.
func ByBusiness(labels map[string]string) LabelFunc {
	return func(r dataset.Review) (string, bool) {
		label, ok := labels[r.BusinessID]
		return label, ok
	}
}

// CompareGroups returns mean, sample standard deviation, count and range of
// stars per label, sorted by label.
func CompareGroups(reviews []dataset.Review, key LabelFunc) []GroupStats {
	groups := make(map[string]*accumulator)
	for _, r := range reviews {
		label, ok := key(r)
		if !ok {
			continue
		}
		acc, ok := groups[label]
		if !ok {
			acc = &accumulator{}
			groups[label] = acc
		}
		acc.add(r.Stars)
	}

	stats := make([]GroupStats, 0, len(groups))
	for label, acc := range groups {
		stats = append(stats, GroupStats{
			Group: label,
			Count: acc.count,
			Mean:  acc.Mean(),
			Std:   acc.Std(),
			Min:   acc.min,
			Max:   acc.max,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Group < stats[j].Group
	})

	return stats
}

// BrandTrend returns the mean stars per year and label.
func BrandTrend(reviews []dataset.Review, key LabelFunc) *Trend {
	type cell struct {
		year  int
		label string
	}
	cells := make(map[cell]*accumulator)
	years := make(map[int]struct{})
	labels := make(map[string]struct{})

	for _, r := range reviews {
		label, ok := key(r)
		if !ok {
			continue
		}
		c := cell{year: r.Year(), label: label}
		acc, ok := cells[c]
		if !ok {
			acc = &accumulator{}
			cells[c] = acc
		}
		acc.add(r.Stars)
		years[c.year] = struct{}{}
		labels[label] = struct{}{}
	}

	t := &Trend{Labels: make([]string, 0, len(labels))}
	for label := range labels {
		t.Labels = append(t.Labels, label)
	}
	sort.Strings(t.Labels)

	sortedYears := make([]int, 0, len(years))
	for y := range years {
		sortedYears = append(sortedYears, y)
	}
	sort.Ints(sortedYears)

	for _, y := range sortedYears {
		row := TrendRow{
			Year:   y,
			Means:  make(map[string]float64),
			Counts: make(map[string]int),
		}
		for _, label := range t.Labels {
			if acc, ok := cells[cell{year: y, label: label}]; ok {
				row.Means[label] = acc.Mean()
				row.Counts[label] = acc.count
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}
