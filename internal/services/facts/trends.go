package facts

import (
	"context"

	"budget-assistant/internal/models"
	"budget-assistant/internal/services/facts/queries"
)

// SalesTrends is the aggregate consumed by the analysis endpoint: accepted
// budgets over a window plus the most popular categories and products,
// ranked by occurrence count.
type SalesTrends struct {
	UserID             string                `json:"userId"`
	PeriodDays         int                   `json:"periodDays"`
	ApprovedCount      int                   `json:"approvedBudgetsCount"`
	TotalSalesValue    float64               `json:"totalSalesValue"`
	AverageBudgetValue float64               `json:"averageBudgetValue"`
	TopCategories      []models.CategoryStat `json:"topCategories"`
	TopProducts        []models.ProductStat  `json:"topProducts"`
}

// GetSalesTrends aggregates accepted budgets for the window. Unlike the
// conversational path this is the sole payload of its endpoint, so a query
// failure is returned rather than degraded.
func (a *Aggregator) GetSalesTrends(ctx context.Context, userID string, days int) (*SalesTrends, error) {
	agg, err := queries.Aggregates(ctx, a.db, queries.BudgetFilter{
		UserID:     userID,
		WindowDays: days,
		Status:     models.StatusAccepted,
	})
	if err != nil {
		return nil, err
	}

	trends := &SalesTrends{
		UserID:             userID,
		PeriodDays:         days,
		ApprovedCount:      agg.Count,
		TotalSalesValue:    agg.Total,
		AverageBudgetValue: agg.Average,
	}

	filter := queries.CatalogFilter{
		UserID:     userID,
		WindowDays: days,
		Status:     models.StatusAccepted,
	}

	categories, err := queries.CategoryStats(ctx, a.db, filter)
	if err != nil {
		return nil, err
	}
	trends.TopCategories = TopCategoriesByCount(categories)

	products, err := queries.ProductStats(ctx, a.db, filter)
	if err != nil {
		return nil, err
	}
	trends.TopProducts = TopProductsByUsage(products)

	return trends, nil
}
