// internal/services/facts/queries/catalog.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budget-assistant/internal/models"
)

// CatalogFilter scopes the category/product joins. Status is only set by the
// sales-trends path; the conversational path leaves it empty.
type CatalogFilter struct {
	UserID     string
	WindowDays int
	Status     models.BudgetStatus
}

// CategoryStats groups categories through the budget join, returning
// (name, budget count, total value) per category in group order. Ranking and
// truncation are the caller's policy.
func CategoryStats(ctx context.Context, db *sql.DB, f CatalogFilter) ([]models.CategoryStat, error) {
	query := `
		SELECT c.name, COUNT(c.id), COALESCE(SUM(b.total), 0)
		FROM "Category" c
		JOIN "Budget" b ON c."budgetId" = b.id
		WHERE b."userId" = $1`
	args := []interface{}{f.UserID}

	if f.WindowDays > 0 {
		args = append(args, time.Now().AddDate(0, 0, -f.WindowDays))
		query += fmt.Sprintf(` AND b."createdAt" >= $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += fmt.Sprintf(` AND b.status = $%d`, len(args))
	}
	query += ` GROUP BY c.name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.CategoryStat
	for rows.Next() {
		var s models.CategoryStat
		if err := rows.Scan(&s.Name, &s.BudgetCount, &s.TotalValue); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// ProductStats groups products through the product→category→budget join,
// returning (name, price, category, usage count) per product in group order.
func ProductStats(ctx context.Context, db *sql.DB, f CatalogFilter) ([]models.ProductStat, error) {
	query := `
		SELECT p.name, p.price, c.name, COUNT(p.id)
		FROM "Product" p
		JOIN "Category" c ON p."categoryId" = c.id
		JOIN "Budget" b ON c."budgetId" = b.id
		WHERE b."userId" = $1`
	args := []interface{}{f.UserID}

	if f.WindowDays > 0 {
		args = append(args, time.Now().AddDate(0, 0, -f.WindowDays))
		query += fmt.Sprintf(` AND b."createdAt" >= $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += fmt.Sprintf(` AND b.status = $%d`, len(args))
	}
	query += ` GROUP BY p.name, p.price, c.name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.ProductStat
	for rows.Next() {
		var s models.ProductStat
		if err := rows.Scan(&s.Name, &s.Price, &s.Category, &s.UsageCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
