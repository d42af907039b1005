package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Star rating domain.
const (
	MinStars = 1
	MaxStars = 5
)

// dateLayouts are tried in order. Yelp exports use the second one.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses a review timestamp. A timestamp with an offset keeps
// it; one without is taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ParseStars parses a star rating. Whole floats such as "4.0" are accepted.
func ParseStars(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty stars value")
	}

	stars, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("non-numeric stars value %q", s)
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("fractional stars value %q", s)
		}
		stars = int(f)
	}

	if stars < MinStars || stars > MaxStars {
		return 0, fmt.Errorf("stars value %d out of range %d-%d", stars, MinStars, MaxStars)
	}

	return stars, nil
}
