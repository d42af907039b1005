package analyzer

import (
	"sort"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
)

// RatingDistribution counts reviews per star value over the whole 1-5
// domain. With a nil key there is a single AllGroup row; otherwise one row
// per label, sorted by label. Each row's Percent sums to 100. Ratings
// outside the domain are ignored; the loader never produces them.
func RatingDistribution(reviews []dataset.Review, by GroupBy, key LabelFunc) *Distribution {
	rows := make(map[string]*DistributionRow)

	for _, r := range reviews {
		if r.Stars < dataset.MinStars || r.Stars > dataset.MaxStars {
			continue
		}

		group := AllGroup
		if key != nil {
			label, ok := key(r)
			if !ok {
				continue
			}
			group = label
		}

		row, ok := rows[group]
		if !ok {
			row = &DistributionRow{Group: group}
			rows[group] = row
		}
		row.Counts[r.Stars-dataset.MinStars]++
		row.Total++
	}

	d := &Distribution{By: by, Rows: make([]DistributionRow, 0, len(rows))}
	for _, row := range rows {
		for i, c := range row.Counts {
			row.Percent[i] = float64(c) / float64(row.Total) * 100
		}
		d.Rows = append(d.Rows, *row)
	}

	sort.Slice(d.Rows, func(i, j int) bool {
		return d.Rows[i].Group < d.Rows[j].Group
	})

	return d
}
