package models

import "time"

// BudgetStatus enumerates the budget lifecycle states. The string values are
// the ones stored by the platform database.
type BudgetStatus string

const (
	StatusSent     BudgetStatus = "Enviado"
	StatusPending  BudgetStatus = "Pendente"
	StatusAccepted BudgetStatus = "Aceito"
	StatusRejected BudgetStatus = "Negado"
)

// AllBudgetStatuses returns every status in a fixed order. Per-status
// breakdowns include all of them even at zero.
func AllBudgetStatuses() []BudgetStatus {
	return []BudgetStatus{StatusSent, StatusPending, StatusAccepted, StatusRejected}
}

// Budget is a quote record from the platform database.
type Budget struct {
	ID         string       `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Status     BudgetStatus `json:"status" db:"status"`
	Total      float64      `json:"total" db:"total"`
	UserID     string       `json:"userId" db:"userId"`
	CustomerID string       `json:"customerId,omitempty" db:"customerId"`
	CreatedAt  time.Time    `json:"createdAt" db:"createdAt"`
}

type Customer struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Email   string `json:"email,omitempty" db:"email"`
	Phone   string `json:"phone,omitempty" db:"phone"`
	Address string `json:"address,omitempty" db:"address"`
	UserID  string `json:"userId" db:"userId"`
}

// CategoryStat is a per-category aggregate over the budget join.
type CategoryStat struct {
	Name        string  `json:"name"`
	BudgetCount int     `json:"budgetCount"`
	TotalValue  float64 `json:"totalValue"`
}

// ProductStat is a per-product aggregate over the product→category→budget join.
type ProductStat struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Category   string  `json:"category"`
	UsageCount int     `json:"usageCount"`
}
