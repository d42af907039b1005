package analyzer

import (
	"strings"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
)

// CompetitorLabel is the brand label shared by all competitors.
const CompetitorLabel = "Competitor"

// BrandMatcher assigns restaurant names to the brand or to a competitor by
// case-insensitive substring match.
//
// A name can match more than one pattern ("Subway & Jimmy John's Food
// Court"). The brand pattern always wins; among competitors the first one in
// configured order wins. Every restaurant therefore gets at most one label.
type BrandMatcher struct {
	brand       string
	competitors []string

	brandLower       string
	competitorsLower []string
}

// NewBrandMatcher creates a matcher for brand and competitors. Empty
// competitor patterns are ignored.
func NewBrandMatcher(brand string, competitors []string) *BrandMatcher {
	m := &BrandMatcher{
		brand:      brand,
		brandLower: strings.ToLower(brand),
	}
	for _, c := range competitors {
		if strings.TrimSpace(c) == "" {
			continue
		}
		m.competitors = append(m.competitors, c)
		m.competitorsLower = append(m.competitorsLower, strings.ToLower(c))
	}
	return m
}

// Brand returns the brand name, which is also its label.
func (m *BrandMatcher) Brand() string {
	return m.brand
}

// Competitors returns the competitor patterns in match order.
func (m *BrandMatcher) Competitors() []string {
	return append([]string(nil), m.competitors...)
}

// BrandMatch is the classification of one restaurant.
type BrandMatch struct {
	Label   string // the brand name or CompetitorLabel
	Pattern string // the pattern that matched
}

// Match classifies a restaurant name.
func (m *BrandMatcher) Match(name string) (BrandMatch, bool) {
	lower := strings.ToLower(name)

	if m.brandLower != "" && strings.Contains(lower, m.brandLower) {
		return BrandMatch{Label: m.brand, Pattern: m.brand}, true
	}

	for i, c := range m.competitorsLower {
		if strings.Contains(lower, c) {
			return BrandMatch{Label: CompetitorLabel, Pattern: m.competitors[i]}, true
		}
	}

	return BrandMatch{}, false
}

// ClassifyBrands returns the brand match of every restaurant that matches,
// keyed by business_id. Restaurants are not modified.
func ClassifyBrands(restaurants []dataset.Restaurant, m *BrandMatcher) map[string]BrandMatch {
	matches := make(map[string]BrandMatch)
	for _, r := range restaurants {
		if match, ok := m.Match(r.Name); ok {
			matches[r.BusinessID] = match
		}
	}
	return matches
}

// BrandLabels turns matches into group labels. With split set, competitors
// are labeled by their own pattern instead of CompetitorLabel.
func BrandLabels(matches map[string]BrandMatch, split bool) map[string]string {
	labels := make(map[string]string, len(matches))
	for id, match := range matches {
		if split && match.Label == CompetitorLabel {
			labels[id] = match.Pattern
			continue
		}
		labels[id] = match.Label
	}
	return labels
}
