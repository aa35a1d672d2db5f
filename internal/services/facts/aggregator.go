// Package facts fetches bounded, summarized business data for the domains an
// intent flagged. A failed domain query degrades to a zero-valued summary
// instead of aborting the pipeline.
package facts

import (
	"context"
	"database/sql"
	"sync"
	"time"

	apperrors "budget-assistant/internal/common/errors"
	"budget-assistant/internal/common/logger"
	"budget-assistant/internal/common/metrics"
	"budget-assistant/internal/models"
	"budget-assistant/internal/services/facts/queries"
	"budget-assistant/internal/services/intent"
)

type Aggregator struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAggregator(db *sql.DB, log logger.Logger) *Aggregator {
	return &Aggregator{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "facts"}),
	}
}

// Aggregate computes one summary per flagged domain. Unflagged domains are
// skipped entirely; their Summaries field stays nil so the composer knows not
// to render a section. Domain queries run concurrently since they are
// independent reads.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, it intent.Intent) Summaries {
	var (
		s  Summaries
		wg sync.WaitGroup
	)

	if it.NeedsBudgets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Budgets = a.budgetSummary(ctx, userID, it)
		}()
	}
	if it.NeedsCustomers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Customers = a.customerSummary(ctx, userID)
		}()
	}
	if it.NeedsCategories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Categories = a.categorySummary(ctx, userID, it)
		}()
	}
	if it.NeedsProducts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Products = a.productSummary(ctx, userID, it)
		}()
	}

	wg.Wait()
	return s
}

// budgetSummary combines the SQL aggregates, computed over the whole
// filtered set, with the capped record list. The cap never skews the totals.
func (a *Aggregator) budgetSummary(ctx context.Context, userID string, it intent.Intent) *BudgetSummary {
	filter := queries.BudgetFilter{
		UserID:     userID,
		WindowDays: it.TimeWindowDays,
		Status:     it.StatusFilter,
	}

	start := time.Now()
	agg, err := queries.Aggregates(ctx, a.db, filter)
	if err != nil {
		metrics.DomainQueryDuration.WithLabelValues("budgets").Observe(time.Since(start).Seconds())
		a.degrade("budgets", err)
		return emptyBudgetSummary()
	}

	budgets, err := queries.Budgets(ctx, a.db, filter)
	metrics.DomainQueryDuration.WithLabelValues("budgets").Observe(time.Since(start).Seconds())
	if err != nil {
		a.degrade("budgets", err)
		return emptyBudgetSummary()
	}

	summary := emptyBudgetSummary()
	summary.Budgets = budgets
	summary.TotalCount = agg.Count
	summary.TotalValue = agg.Total
	summary.AverageValue = agg.Average
	for _, sa := range agg.ByStatus {
		summary.ByStatus[sa.Status] = StatusTotals{Count: sa.Count, TotalValue: sa.Total}
	}
	return summary
}

func (a *Aggregator) customerSummary(ctx context.Context, userID string) *CustomerSummary {
	start := time.Now()
	customers, err := queries.Customers(ctx, a.db, userID)
	metrics.DomainQueryDuration.WithLabelValues("customers").Observe(time.Since(start).Seconds())
	if err != nil {
		a.degrade("customers", err)
		return &CustomerSummary{}
	}
	return &CustomerSummary{TotalCount: len(customers), Customers: customers}
}

func (a *Aggregator) categorySummary(ctx context.Context, userID string, it intent.Intent) *CategorySummary {
	start := time.Now()
	stats, err := queries.CategoryStats(ctx, a.db, queries.CatalogFilter{
		UserID:     userID,
		WindowDays: it.TimeWindowDays,
	})
	metrics.DomainQueryDuration.WithLabelValues("categories").Observe(time.Since(start).Seconds())
	if err != nil {
		a.degrade("categories", err)
		return &CategorySummary{}
	}
	return &CategorySummary{Categories: stats}
}

func (a *Aggregator) productSummary(ctx context.Context, userID string, it intent.Intent) *ProductSummary {
	start := time.Now()
	stats, err := queries.ProductStats(ctx, a.db, queries.CatalogFilter{
		UserID:     userID,
		WindowDays: it.TimeWindowDays,
	})
	metrics.DomainQueryDuration.WithLabelValues("products").Observe(time.Since(start).Seconds())
	if err != nil {
		a.degrade("products", err)
		return &ProductSummary{}
	}
	return &ProductSummary{Products: stats}
}

// ListCustomers returns the owner's full customer list for the API surface.
// Unlike the conversational path, a read failure surfaces to the caller.
func (a *Aggregator) ListCustomers(ctx context.Context, userID string) ([]models.Customer, error) {
	return queries.Customers(ctx, a.db, userID)
}

// degrade logs and counts a failed domain query. The zero-valued summary the
// caller substitutes shows up to the user as "0 results", never as an error.
func (a *Aggregator) degrade(domain string, err error) {
	degradedErr := apperrors.NewAggregationDegradedError(domain, err)
	a.logger.Error("aggregation degraded", map[string]interface{}{
		"domain":    domain,
		"errorCode": string(apperrors.ErrCodeAggregationDegraded),
		"error":     degradedErr.Details,
	})
	metrics.AggregationDegraded.WithLabelValues(domain).Inc()
}

func emptyBudgetSummary() *BudgetSummary {
	byStatus := make(map[models.BudgetStatus]StatusTotals, 4)
	for _, st := range models.AllBudgetStatuses() {
		byStatus[st] = StatusTotals{}
	}
	return &BudgetSummary{ByStatus: byStatus}
}
