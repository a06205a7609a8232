package stats

import (
	"math"

	mstats "github.com/aclements/go-moremath/stats"
)

// WelchResult holds a two-sided Welch's t-test outcome.
type WelchResult struct {
	T   float64
	DoF float64
	P   float64
}

// WelchTTest runs an unequal-variance two-sample t-test of a against b.
// ok is false when either sample has fewer than two values, when both
// samples have zero variance, or when the statistic is not finite.
func WelchTTest(a, b []float64) (WelchResult, bool) {
	res, err := mstats.TwoSampleWelchTTest(
		&mstats.Sample{Xs: a},
		&mstats.Sample{Xs: b},
		mstats.LocationDiffers,
	)
	if err != nil {
		return WelchResult{}, false
	}
	if math.IsNaN(res.T) || math.IsInf(res.T, 0) || math.IsNaN(res.P) {
		return WelchResult{}, false
	}
	return WelchResult{T: res.T, DoF: res.DoF, P: res.P}, true
}
