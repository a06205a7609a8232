package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// cohort returns k copies of hi, k copies of lo and one copy of mid.
func cohort(k int, hi, lo, mid float64) []float64 {
	out := make([]float64, 0, 2*k+1)
	for i := 0; i < k; i++ {
		out = append(out, hi, lo)
	}
	return append(out, mid)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestMean(t *testing.T) {
	_, ok := Mean(nil)
	assert.False(t, ok, "empty cohort has no mean")

	m, ok := Mean([]float64{10, 20, 30})
	require.True(t, ok)
	assert.InDelta(t, 20.0, m, 1e-12)
}

func TestCorrectionFactor(t *testing.T) {
	assert.Equal(t, 1.0, CorrectionFactor(4))
	assert.Equal(t, 1.0, CorrectionFactor(9))
	assert.InDelta(t, 1-3.0/31, CorrectionFactor(10), 1e-12)
	assert.InDelta(t, 1-3.0/111, CorrectionFactor(30), 1e-12)
}

func TestHedgesGReferenceCohorts(t *testing.T) {
	// 15 values each, SD 20, means 100 and 80: d = 1.
	disc := cohort(7, 120, 80, 100)
	nodisc := cohort(7, 100, 60, 80)
	require.Len(t, disc, 15)

	sp, ok := PooledStdDev(disc, nodisc)
	require.True(t, ok)
	assert.InDelta(t, 20.0, sp, 1e-9)

	g, ok := HedgesG(disc, nodisc)
	require.True(t, ok)
	j := 1 - 3.0/(4*30-9)
	assert.InDelta(t, 1.0*j, g, 1e-9)
	assert.InDelta(t, 0.96, g, 0.02)
	assert.Greater(t, g, 0.0, "discounted cohort has the higher mean")

	neg, ok := HedgesG(nodisc, disc)
	require.True(t, ok)
	assert.InDelta(t, -g, neg, 1e-12)
}

func TestHedgesGSmallSampleSkipsCorrection(t *testing.T) {
	// n1+n0 = 8, so J = 1 and g equals Cohen's d.
	a := []float64{12, 14, 16, 18}
	b := []float64{10, 12, 14, 16}
	g, ok := HedgesG(a, b)
	require.True(t, ok)
	sp, _ := PooledStdDev(a, b)
	assert.InDelta(t, 2/sp, g, 1e-12)
}

func TestHedgesGDegenerate(t *testing.T) {
	_, ok := HedgesG([]float64{1}, []float64{1, 2, 3})
	assert.False(t, ok, "single-element cohort")

	_, ok = HedgesG(repeat(5, 12), repeat(5, 12))
	assert.False(t, ok, "zero pooled variance")

	_, ok = HedgesG(nil, nil)
	assert.False(t, ok)
}

func TestWelchTTestMatchesHandComputation(t *testing.T) {
	a := []float64{27.5, 21.0, 19.0, 23.6, 17.0, 17.9, 16.9, 20.1, 21.9, 22.6, 23.1, 19.6, 19.0, 21.7, 21.4}
	b := []float64{27.1, 22.0, 20.8, 23.4, 23.4, 23.5, 25.8, 22.0, 24.8, 20.2, 21.9, 22.1, 22.9, 20.5, 24.4, 22.6, 25.1}

	res, ok := WelchTTest(a, b)
	require.True(t, ok)

	m1, _ := Mean(a)
	m0, _ := Mean(b)
	v1 := variance(a)
	v0 := variance(b)
	n1, n0 := float64(len(a)), float64(len(b))
	se2 := v1/n1 + v0/n0
	wantT := (m1 - m0) / math.Sqrt(se2)
	wantDoF := se2 * se2 / ((v1/n1)*(v1/n1)/(n1-1) + (v0/n0)*(v0/n0)/(n0-1))
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: wantDoF}
	wantP := 2 * (1 - tdist.CDF(math.Abs(wantT)))

	assert.InDelta(t, wantT, res.T, 1e-9)
	assert.InDelta(t, wantDoF, res.DoF, 1e-7)
	assert.InDelta(t, wantP, res.P, 1e-6)
	assert.Less(t, res.T, 0.0)
}

func TestWelchTTestReferenceCohorts(t *testing.T) {
	res, ok := WelchTTest(cohort(7, 120, 80, 100), cohort(7, 100, 60, 80))
	require.True(t, ok)
	assert.InDelta(t, 20/math.Sqrt(800.0/15), res.T, 1e-7)
	assert.InDelta(t, 28.0, res.DoF, 1e-6)
	assert.Greater(t, res.P, 0.005)
	assert.Less(t, res.P, 0.02)
}

func TestWelchTTestDegenerate(t *testing.T) {
	_, ok := WelchTTest([]float64{1}, []float64{1, 2})
	assert.False(t, ok, "too few values")

	_, ok = WelchTTest(repeat(3, 10), repeat(4, 10))
	assert.False(t, ok, "both variances zero")
}

func TestPctLift(t *testing.T) {
	assert.False(t, PctLift(50, 0).Valid, "division guard")
	lift := PctLift(60, 50)
	require.True(t, lift.Valid)
	assert.InDelta(t, 20.0, lift.Value, 1e-12)

	// A negative near-zero denominator is not special-cased.
	neg := PctLift(10, -0.001)
	require.True(t, neg.Valid)
	assert.Less(t, neg.Value, -1e5)
}

func TestCompareEmptyCohort(t *testing.T) {
	c := Compare([]float64{10, 20}, nil, 10)
	assert.Equal(t, 2, c.NDiscount)
	assert.Equal(t, 0, c.NNoDiscount)
	assert.True(t, c.AOVDiscount.Valid)
	assert.InDelta(t, 15.0, c.AOVDiscount.Value, 1e-12)
	for name, f := range map[string]Float{
		"AOV_no_discount": c.AOVNoDiscount,
		"Delta_AOV":       c.DeltaAOV,
		"Pct_Lift":        c.PctLift,
		"Welch_t":         c.WelchT,
		"p_value":         c.PValue,
		"Hedges_g":        c.HedgesG,
	} {
		assert.False(t, f.Valid, "%s should be missing", name)
		assert.Equal(t, Missing, f, "%s should be the zero value, not NaN", name)
	}
}

func TestCompareBelowThreshold(t *testing.T) {
	c := Compare([]float64{30, 40, 50}, []float64{10, 20, 30, 40}, 10)
	require.True(t, c.AOVDiscount.Valid)
	require.True(t, c.AOVNoDiscount.Valid)
	assert.InDelta(t, 40.0, c.AOVDiscount.Value, 1e-12)
	assert.InDelta(t, 25.0, c.AOVNoDiscount.Value, 1e-12)
	assert.InDelta(t, 15.0, c.DeltaAOV.Value, 1e-12)
	assert.InDelta(t, 60.0, c.PctLift.Value, 1e-12)
	assert.False(t, c.WelchT.Valid)
	assert.False(t, c.PValue.Valid)
	assert.False(t, c.HedgesG.Valid)
	assert.Equal(t, 3, c.MinN())
}

func TestCompareAtThreshold(t *testing.T) {
	disc := cohort(7, 120, 80, 100)
	nodisc := cohort(7, 100, 60, 80)
	c := Compare(disc, nodisc, 15)
	assert.True(t, c.WelchT.Valid)
	assert.True(t, c.PValue.Valid)
	assert.True(t, c.HedgesG.Valid)
	assert.InDelta(t, 25.0, c.PctLift.Value, 1e-12)

	c = Compare(disc, nodisc, 16)
	assert.False(t, c.WelchT.Valid)
	assert.False(t, c.HedgesG.Valid)
}

func TestFloatStringAndParse(t *testing.T) {
	assert.Equal(t, "", Missing.String())
	assert.Equal(t, "12.3457", Some(12.3457).String())
	assert.Equal(t, "-3", Some(-3).String())
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)

	f, err := ParseFloat("")
	require.NoError(t, err)
	assert.False(t, f.Valid)

	f, err = ParseFloat("0.0123")
	require.NoError(t, err)
	assert.Equal(t, Some(0.0123), f)

	_, err = ParseFloat("abc")
	assert.Error(t, err)
}

func variance(xs []float64) float64 {
	m, _ := Mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return ss / float64(len(xs)-1)
}
