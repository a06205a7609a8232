package analysis

import (
	"sort"

	"github.com/KaramelBytes/discount-impact/internal/stats"
)

// Cohorts holds the purchase amounts of one category split by discount flag.
type Cohorts struct {
	Category   string
	Discount   []float64
	NoDiscount []float64
}

// CategorySummary is one output row: a category and its cohort comparison.
type CategorySummary struct {
	Category string
	stats.Comparison
}

// GroupByCategory partitions transactions by category, in ascending category order.
func GroupByCategory(txs []Transaction) []Cohorts {
	byCat := map[string]*Cohorts{}
	for _, tx := range txs {
		c := byCat[tx.Category]
		if c == nil {
			c = &Cohorts{Category: tx.Category}
			byCat[tx.Category] = c
		}
		if tx.Discounted {
			c.Discount = append(c.Discount, tx.Amount)
		} else {
			c.NoDiscount = append(c.NoDiscount, tx.Amount)
		}
	}
	out := make([]Cohorts, 0, len(byCat))
	for _, c := range byCat {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Summarize compares the cohorts of every category. Statistics needing
// minPerGroup values per cohort are left missing for thinner categories.
func Summarize(txs []Transaction, minPerGroup int) []CategorySummary {
	groups := GroupByCategory(txs)
	out := make([]CategorySummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategorySummary{
			Category:   g.Category,
			Comparison: stats.Compare(g.Discount, g.NoDiscount, minPerGroup),
		})
	}
	return out
}
