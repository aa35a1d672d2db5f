// internal/services/facts/queries/customers.go
package queries

import (
	"context"
	"database/sql"

	"budget-assistant/internal/models"
)

// Customers returns every customer owned by the user. No ranking, full list.
func Customers(ctx context.Context, db *sql.DB, userID string) ([]models.Customer, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, '')
		FROM "Customer"
		WHERE "userId" = $1
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c := models.Customer{UserID: userID}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
