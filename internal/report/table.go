// Package report rounds, orders and serializes category summaries.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/discount-impact/internal/analysis"
	"github.com/KaramelBytes/discount-impact/internal/stats"
)

// Places is the number of decimals kept for every derived numeric column.
const Places = 4

// Header is the column layout of the output table.
var Header = []string{
	"Category",
	"N_discount",
	"N_no_discount",
	"AOV_discount",
	"AOV_no_discount",
	"Delta_AOV",
	"Pct_Lift",
	"Welch_t",
	"p_value",
	"Hedges_g",
}

// RoundFloat rounds f to places decimals, half away from zero. Missing stays missing.
func RoundFloat(f stats.Float, places int32) stats.Float {
	if !f.Valid {
		return f
	}
	v, _ := decimal.NewFromFloat(f.Value).Round(places).Float64()
	return stats.Some(v)
}

// Round returns a copy of rows with all derived numeric columns rounded.
func Round(rows []analysis.CategorySummary, places int32) []analysis.CategorySummary {
	out := make([]analysis.CategorySummary, len(rows))
	for i, r := range rows {
		c := r.Comparison
		c.AOVDiscount = RoundFloat(c.AOVDiscount, places)
		c.AOVNoDiscount = RoundFloat(c.AOVNoDiscount, places)
		c.DeltaAOV = RoundFloat(c.DeltaAOV, places)
		c.PctLift = RoundFloat(c.PctLift, places)
		c.WelchT = RoundFloat(c.WelchT, places)
		c.PValue = RoundFloat(c.PValue, places)
		c.HedgesG = RoundFloat(c.HedgesG, places)
		out[i] = analysis.CategorySummary{Category: r.Category, Comparison: c}
	}
	return out
}

// liftBefore orders by percentage lift descending with missing values last.
func liftBefore(a, b stats.Float) bool {
	if a.Valid != b.Valid {
		return a.Valid
	}
	if !a.Valid {
		return false
	}
	return a.Value > b.Value
}

// Sort orders rows in place by Pct_Lift descending, missing last.
// Equal lifts keep their incoming order.
func Sort(rows []analysis.CategorySummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		return liftBefore(rows[i].PctLift, rows[j].PctLift)
	})
}

// Record renders one row in Header order; missing values are empty strings.
func Record(r analysis.CategorySummary) []string {
	return []string{
		r.Category,
		itoa(r.NDiscount),
		itoa(r.NNoDiscount),
		r.AOVDiscount.String(),
		r.AOVNoDiscount.String(),
		r.DeltaAOV.String(),
		r.PctLift.String(),
		r.WelchT.String(),
		r.PValue.String(),
		r.HedgesG.String(),
	}
}
