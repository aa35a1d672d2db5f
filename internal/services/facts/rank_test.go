package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"budget-assistant/internal/models"
)

func TestTopCategoriesByValue(t *testing.T) {
	stats := []models.CategoryStat{
		{Name: "Cozinha", BudgetCount: 2, TotalValue: 500},
		{Name: "Quarto", BudgetCount: 8, TotalValue: 2000},
		{Name: "Sala", BudgetCount: 5, TotalValue: 1000},
	}

	top := TopCategoriesByValue(stats)

	assert.Equal(t, "Quarto", top[0].Name)
	assert.Equal(t, "Sala", top[1].Name)
	assert.Equal(t, "Cozinha", top[2].Name)
}

func TestTopCategoriesByCount(t *testing.T) {
	stats := []models.CategoryStat{
		{Name: "Cozinha", BudgetCount: 2, TotalValue: 500},
		{Name: "Quarto", BudgetCount: 8, TotalValue: 2000},
		{Name: "Sala", BudgetCount: 5, TotalValue: 1000},
	}

	top := TopCategoriesByCount(stats)

	assert.Equal(t, "Quarto", top[0].Name)
	assert.Equal(t, "Sala", top[1].Name)
	assert.Equal(t, "Cozinha", top[2].Name)
}

func TestRanking_TruncatesToFive(t *testing.T) {
	stats := make([]models.CategoryStat, 8)
	for i := range stats {
		stats[i] = models.CategoryStat{Name: "c", TotalValue: float64(100 - i)}
	}

	assert.Len(t, TopCategoriesByValue(stats), 5)
	assert.Len(t, TopCategoriesByCount(stats), 5)
}

func TestRanking_TiesKeepInputOrder(t *testing.T) {
	stats := []models.CategoryStat{
		{Name: "Primeiro", TotalValue: 100},
		{Name: "Segundo", TotalValue: 100},
		{Name: "Terceiro", TotalValue: 100},
	}

	top := TopCategoriesByValue(stats)

	assert.Equal(t, "Primeiro", top[0].Name)
	assert.Equal(t, "Segundo", top[1].Name)
	assert.Equal(t, "Terceiro", top[2].Name)
}

func TestRanking_DoesNotMutateInput(t *testing.T) {
	stats := []models.CategoryStat{
		{Name: "A", TotalValue: 1},
		{Name: "B", TotalValue: 2},
	}

	TopCategoriesByValue(stats)

	assert.Equal(t, "A", stats[0].Name)
}

func TestTopProductsByUsage(t *testing.T) {
	stats := []models.ProductStat{
		{Name: "Porta", UsageCount: 1},
		{Name: "Armário", UsageCount: 9},
		{Name: "Prateleira", UsageCount: 4},
		{Name: "Gaveta", UsageCount: 4},
	}

	top := TopProductsByUsage(stats)

	assert.Equal(t, "Armário", top[0].Name)
	assert.Equal(t, "Prateleira", top[1].Name)
	assert.Equal(t, "Gaveta", top[2].Name)
	assert.Equal(t, "Porta", top[3].Name)
}
