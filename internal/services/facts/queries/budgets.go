// internal/services/facts/queries/budgets.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budget-assistant/internal/models"
)

// maxBudgetRows bounds the individual budget list carried into the composed
// context. Aggregates are never subject to this cap; see BudgetAggregates.
const maxBudgetRows = 100

// BudgetFilter is the explicit parameter bundle for budget reads.
type BudgetFilter struct {
	UserID     string
	WindowDays int                 // 0 = unbounded
	Status     models.BudgetStatus // "" = all statuses
}

// StatusAggregate is one grouped row of the server-side breakdown.
type StatusAggregate struct {
	Status models.BudgetStatus
	Count  int
	Total  float64
}

// BudgetAggregates holds count/total/average and the per-status breakdown
// over the whole filtered set.
type BudgetAggregates struct {
	Count    int
	Total    float64
	Average  float64
	ByStatus []StatusAggregate
}

func (f BudgetFilter) where() (string, []interface{}) {
	clause := `WHERE "userId" = $1`
	args := []interface{}{f.UserID}

	if f.WindowDays > 0 {
		args = append(args, time.Now().AddDate(0, 0, -f.WindowDays))
		clause += fmt.Sprintf(` AND "createdAt" >= $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		clause += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	return clause, args
}

// Aggregates computes the budget totals in SQL, grouped by status, so the
// result covers every matching row regardless of how large the filtered set
// is. Overall count/total/average derive from the grouped rows.
func Aggregates(ctx context.Context, db *sql.DB, f BudgetFilter) (*BudgetAggregates, error) {
	clause, args := f.where()
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM "Budget"
		` + clause + `
		GROUP BY status`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agg := &BudgetAggregates{}
	for rows.Next() {
		var (
			status string
			sa     StatusAggregate
		)
		if err := rows.Scan(&status, &sa.Count, &sa.Total); err != nil {
			return nil, err
		}
		sa.Status = models.BudgetStatus(status)
		agg.ByStatus = append(agg.ByStatus, sa)
		agg.Count += sa.Count
		agg.Total += sa.Total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if agg.Count > 0 {
		agg.Average = agg.Total / float64(agg.Count)
	}
	return agg, nil
}

// Budgets returns the owner's budgets under the filter, newest first, capped
// at maxBudgetRows. Only this record list is bounded.
func Budgets(ctx context.Context, db *sql.DB, f BudgetFilter) ([]models.Budget, error) {
	clause, args := f.where()
	args = append(args, maxBudgetRows)
	query := `
		SELECT id, name, status, total, "createdAt", COALESCE("customerId", '')
		FROM "Budget"
		` + clause + fmt.Sprintf(`
		ORDER BY "createdAt" DESC LIMIT $%d`, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b := models.Budget{UserID: f.UserID}
		var status string
		if err := rows.Scan(&b.ID, &b.Name, &status, &b.Total, &b.CreatedAt, &b.CustomerID); err != nil {
			return nil, err
		}
		b.Status = models.BudgetStatus(status)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
