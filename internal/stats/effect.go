package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs. ok is false for an empty slice.
func Mean(xs []float64) (mean float64, ok bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return stat.Mean(xs, nil), true
}

// CorrectionFactor is the small-sample bias correction J applied to Cohen's d.
// It is 1 when the combined sample size is 9 or less.
func CorrectionFactor(n int) float64 {
	if n <= 9 {
		return 1
	}
	return 1 - 3/(4*float64(n)-9)
}

// PooledStdDev returns the pooled sample standard deviation of a and b,
// weighting each variance by its degrees of freedom.
func PooledStdDev(a, b []float64) (float64, bool) {
	n1, n0 := len(a), len(b)
	if n1 < 2 || n0 < 2 {
		return 0, false
	}
	df := float64(n1 + n0 - 2)
	if df <= 0 {
		return 0, false
	}
	_, v1 := stat.MeanVariance(a, nil)
	_, v0 := stat.MeanVariance(b, nil)
	pooled := (float64(n1-1)*v1 + float64(n0-1)*v0) / df
	if pooled <= 0 || math.IsNaN(pooled) {
		return 0, false
	}
	return math.Sqrt(pooled), true
}

// HedgesG returns the bias-corrected standardized mean difference of a over b.
// A positive value means a has the higher mean.
func HedgesG(a, b []float64) (float64, bool) {
	sp, ok := PooledStdDev(a, b)
	if !ok {
		return 0, false
	}
	d := (stat.Mean(a, nil) - stat.Mean(b, nil)) / sp
	return d * CorrectionFactor(len(a)+len(b)), true
}
