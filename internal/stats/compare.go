// Package stats compares the discounted and non-discounted cohorts of a
// category: cohort means, mean delta, percentage lift, Welch's t-test and
// Hedges' g. All functions are pure.
package stats

// Comparison is the cohort comparison for one category.
type Comparison struct {
	NDiscount   int
	NNoDiscount int

	AOVDiscount   Float
	AOVNoDiscount Float
	DeltaAOV      Float
	PctLift       Float
	WelchT        Float
	PValue        Float
	HedgesG       Float
}

// MinN is the smaller of the two cohort sizes.
func (c Comparison) MinN() int {
	if c.NDiscount < c.NNoDiscount {
		return c.NDiscount
	}
	return c.NNoDiscount
}

// PctLift returns the percentage change of aov1 over aov0.
// It is missing when aov0 is exactly zero.
func PctLift(aov1, aov0 float64) Float {
	if aov0 == 0 {
		return Missing
	}
	return Some((aov1/aov0 - 1) * 100)
}

// Compare computes the comparison of disc against nodisc. Delta and lift need
// both cohorts non-empty; the t-test and effect size need both cohorts to hold
// at least minPerGroup values.
func Compare(disc, nodisc []float64, minPerGroup int) Comparison {
	c := Comparison{NDiscount: len(disc), NNoDiscount: len(nodisc)}

	aov1, ok1 := Mean(disc)
	aov0, ok0 := Mean(nodisc)
	c.AOVDiscount = Maybe(aov1, ok1)
	c.AOVNoDiscount = Maybe(aov0, ok0)

	if ok1 && ok0 {
		c.DeltaAOV = Some(aov1 - aov0)
		c.PctLift = PctLift(aov1, aov0)
	}

	if c.NDiscount >= minPerGroup && c.NNoDiscount >= minPerGroup {
		if w, ok := WelchTTest(disc, nodisc); ok {
			c.WelchT = Some(w.T)
			c.PValue = Some(w.P)
		}
		c.HedgesG = Maybe(HedgesG(disc, nodisc))
	}
	return c
}
