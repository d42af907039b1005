// Package dataset reads the review and restaurant inputs that every
// ratingscope analysis is derived from.
package dataset

import "time"

// Review is a single customer rating event.
type Review struct {
	BusinessID string
	Stars      int // 1-5
	Date       time.Time
}

// Year returns the calendar year of the review's own timestamp, in the
// offset it was recorded with.
func (r Review) Year() int {
	return r.Date.Year()
}

// Restaurant is one restaurant location.
type Restaurant struct {
	BusinessID string
	Name       string
	City       string
	State      string
}

// Dataset holds both inputs of one import.
type Dataset struct {
	Reviews     []Review
	Restaurants []Restaurant
}
