package facts

import (
	"sort"

	"budget-assistant/internal/models"
)

// Two ranking policies coexist deliberately: the sales-trends path ranks
// categories and products by occurrence count, while the context-composition
// path ranks categories by total value and products by usage count. Each is
// named explicitly; both truncate to topN with ties kept in input order.

const topN = 5

// TopCategoriesByValue is the context-composition ranking.
func TopCategoriesByValue(stats []models.CategoryStat) []models.CategoryStat {
	out := make([]models.CategoryStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalValue > out[j].TotalValue })
	return truncateCategories(out)
}

// TopCategoriesByCount is the sales-trends ranking.
func TopCategoriesByCount(stats []models.CategoryStat) []models.CategoryStat {
	out := make([]models.CategoryStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BudgetCount > out[j].BudgetCount })
	return truncateCategories(out)
}

// TopProductsByUsage ranks products by usage count; both paths agree on this
// aggregate for products.
func TopProductsByUsage(stats []models.ProductStat) []models.ProductStat {
	out := make([]models.ProductStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func truncateCategories(stats []models.CategoryStat) []models.CategoryStat {
	if len(stats) > topN {
		return stats[:topN]
	}
	return stats
}
