package analyzer

import (
	"github.com/blackwell-systems/ratingscope/internal/dataset"
)

// ChainCategory classifies a restaurant name by how many cities it is in.
type ChainCategory string

const (
	NationalChain ChainCategory = "National Chain"
	RegionalChain ChainCategory = "Regional Chain"
	LocalChain    ChainCategory = "Local Chain"
)

// DefaultNationalThreshold is the city count a chain must exceed to be
// national.
const DefaultNationalThreshold = 50

// ChainThresholds configures chain classification.
type ChainThresholds struct {
	// National is the number of cities a name must be present in more than
	// to count as a national chain.
	National int
}

// DefaultChainThresholds returns the standard thresholds (> 50 cities).
func DefaultChainThresholds() ChainThresholds {
	return ChainThresholds{National: DefaultNationalThreshold}
}

// Categorize maps a distinct city count to a category: more than
// th.National is national, exactly one is local, anything else (including
// zero known cities) is regional.
func Categorize(cityCount int, th ChainThresholds) ChainCategory {
	switch {
	case cityCount > th.National:
		return NationalChain
	case cityCount == 1:
		return LocalChain
	default:
		return RegionalChain
	}
}

// ChainScope is the classification of one restaurant name.
type ChainScope struct {
	Name      string        `json:"name"`
	CityCount int           `json:"city_count"`
	Category  ChainCategory `json:"category"`
}

// ClassifyChainScope counts the distinct non-empty cities of every exact
// restaurant name and categorizes it. The result is keyed by name.
func ClassifyChainScope(restaurants []dataset.Restaurant, th ChainThresholds) map[string]ChainScope {
	cities := make(map[string]map[string]struct{})
	for _, r := range restaurants {
		set, ok := cities[r.Name]
		if !ok {
			set = make(map[string]struct{})
			cities[r.Name] = set
		}
		if r.City != "" {
			set[r.City] = struct{}{}
		}
	}

	scopes := make(map[string]ChainScope, len(cities))
	for name, set := range cities {
		scopes[name] = ChainScope{
			Name:      name,
			CityCount: len(set),
			Category:  Categorize(len(set), th),
		}
	}
	return scopes
}

// ChainCategories returns the chain category of every restaurant, keyed by
// business_id. It builds a new lookup instead of annotating restaurants.
func ChainCategories(restaurants []dataset.Restaurant, scopes map[string]ChainScope) map[string]ChainCategory {
	categories := make(map[string]ChainCategory, len(restaurants))
	for _, r := range restaurants {
		if scope, ok := scopes[r.Name]; ok {
			categories[r.BusinessID] = scope.Category
		}
	}
	return categories
}
