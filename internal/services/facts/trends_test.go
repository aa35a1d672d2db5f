package facts

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"budget-assistant/internal/common/logger"
)

func TestGetSalesTrends(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`GROUP BY status`).
		WithArgs("user-1", sqlmock.AnyArg(), "Aceito").
		WillReturnRows(statusRows().AddRow("Aceito", 2, 4000.0))
	mock.ExpectQuery(`FROM "Category"`).
		WithArgs("user-1", sqlmock.AnyArg(), "Aceito").
		WillReturnRows(sqlmock.NewRows([]string{"name", "count", "total"}).
			AddRow("Cozinha", 1, 3000.0).
			AddRow("Quarto", 5, 1000.0))
	mock.ExpectQuery(`FROM "Product"`).
		WithArgs("user-1", sqlmock.AnyArg(), "Aceito").
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "category", "count"}).
			AddRow("Armário", 450.0, "Cozinha", 2).
			AddRow("Porta", 120.0, "Quarto", 7))

	agg := NewAggregator(db, logger.NewTestLogger(t))
	trends, err := agg.GetSalesTrends(context.Background(), "user-1", 90)

	assert.NoError(t, err)
	assert.Equal(t, "user-1", trends.UserID)
	assert.Equal(t, 90, trends.PeriodDays)
	assert.Equal(t, 2, trends.ApprovedCount)
	assert.Equal(t, 4000.0, trends.TotalSalesValue)
	assert.Equal(t, 2000.0, trends.AverageBudgetValue)

	// Trend rankings go by occurrence count, not value.
	assert.Equal(t, "Quarto", trends.TopCategories[0].Name)
	assert.Equal(t, "Porta", trends.TopProducts[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSalesTrends_NoApprovedBudgets(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`GROUP BY status`).WillReturnRows(statusRows())
	mock.ExpectQuery(`FROM "Category"`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count", "total"}))
	mock.ExpectQuery(`FROM "Product"`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "category", "count"}))

	agg := NewAggregator(db, logger.NewTestLogger(t))
	trends, err := agg.GetSalesTrends(context.Background(), "user-1", 30)

	assert.NoError(t, err)
	assert.Equal(t, 0, trends.ApprovedCount)
	assert.Equal(t, 0.0, trends.AverageBudgetValue)
}

func TestGetSalesTrends_QueryErrorSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`GROUP BY status`).WillReturnError(errors.New("down"))

	agg := NewAggregator(db, logger.NewTestLogger(t))
	_, err = agg.GetSalesTrends(context.Background(), "user-1", 30)

	assert.Error(t, err)
}
