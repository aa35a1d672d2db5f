package facts

import "budget-assistant/internal/models"

// StatusTotals is the per-status slice of a budget breakdown.
type StatusTotals struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// BudgetSummary aggregates the owner's budgets under the intent's filters.
// ByStatus always carries all four statuses, computed over the same filtered
// set regardless of whether a status filter was applied.
type BudgetSummary struct {
	TotalCount   int                                  `json:"totalCount"`
	TotalValue   float64                              `json:"totalValue"`
	AverageValue float64                              `json:"averageValue"`
	ByStatus     map[models.BudgetStatus]StatusTotals `json:"byStatus"`
	Budgets      []models.Budget                      `json:"budgets"`
}

type CustomerSummary struct {
	TotalCount int               `json:"totalCount"`
	Customers  []models.Customer `json:"customers"`
}

// CategorySummary holds per-category aggregates in query group order; ranking
// is applied by the consumer's policy.
type CategorySummary struct {
	Categories []models.CategoryStat `json:"categories"`
}

type ProductSummary struct {
	Products []models.ProductStat `json:"products"`
}

// Summaries is the aggregation result. A nil field means the domain was not
// requested; a zero-valued non-nil field means the domain query degraded or
// genuinely matched nothing.
type Summaries struct {
	Budgets    *BudgetSummary
	Customers  *CustomerSummary
	Categories *CategorySummary
	Products   *ProductSummary
}
