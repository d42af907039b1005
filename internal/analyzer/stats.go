package analyzer

import "math"

// accumulator keeps a running count, mean and sum of squared deviations
// (Welford), plus the extremes.
type accumulator struct {
	count int
	mean  float64
	m2    float64
	min   int
	max   int
}

func (a *accumulator) add(stars int) {
	if a.count == 0 || stars < a.min {
		a.min = stars
	}
	if a.count == 0 || stars > a.max {
		a.max = stars
	}

	a.count++
	x := float64(stars)
	delta := x - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (x - a.mean)
}

// Mean returns NaN for an empty accumulator.
func (a *accumulator) Mean() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.mean
}

// Std returns the sample standard deviation (n-1 denominator), NaN below two
// values.
func (a *accumulator) Std() float64 {
	if a.count < 2 {
		return math.NaN()
	}
	return math.Sqrt(a.m2 / float64(a.count-1))
}
