package contextbuild

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"budget-assistant/internal/models"
	"budget-assistant/internal/services/facts"
	"budget-assistant/internal/services/intent"
)

func budgetSummary() *facts.BudgetSummary {
	return &facts.BudgetSummary{
		TotalCount:   2,
		TotalValue:   1500,
		AverageValue: 750,
		ByStatus: map[models.BudgetStatus]facts.StatusTotals{
			models.StatusSent:     {},
			models.StatusPending:  {},
			models.StatusAccepted: {Count: 2, TotalValue: 1500},
			models.StatusRejected: {},
		},
	}
}

// ==========================
// Fallback Path
// ==========================

func TestCompose_Fallback_WhenNoDataNeeded(t *testing.T) {
	out := Compose("olá, tudo bem?", intent.Intent{}, facts.Summaries{}, nil)

	assert.Contains(t, out, "Pergunta do usuário: olá, tudo bem?")
	assert.Contains(t, out, "assistente de análise de negócios amigável")
	assert.NotContains(t, out, "DADOS DE")
}

// ==========================
// Data Sections
// ==========================

func TestCompose_BudgetSection(t *testing.T) {
	it := intent.Intent{NeedsBudgets: true}
	s := facts.Summaries{Budgets: budgetSummary()}

	out := Compose("quantos orçamentos?", it, s, nil)

	assert.Contains(t, out, "--- DADOS DE ORÇAMENTOS ---")
	assert.Contains(t, out, "Total de orçamentos: 2")
	assert.Contains(t, out, "Valor total: R$ 1.500,00")
	assert.Contains(t, out, "Valor médio: R$ 750,00")

	// Every status appears even at zero.
	assert.Contains(t, out, "- Enviado: 0 orçamentos, R$ 0,00")
	assert.Contains(t, out, "- Pendente: 0 orçamentos, R$ 0,00")
	assert.Contains(t, out, "- Aceito: 2 orçamentos, R$ 1.500,00")
	assert.Contains(t, out, "- Negado: 0 orçamentos, R$ 0,00")
}

func TestCompose_SkipsSectionsForNilSummaries(t *testing.T) {
	it := intent.Intent{NeedsBudgets: true}
	s := facts.Summaries{Budgets: budgetSummary()}

	out := Compose("quantos orçamentos?", it, s, nil)

	assert.NotContains(t, out, "DADOS DE CLIENTES")
	assert.NotContains(t, out, "DADOS DE CATEGORIAS")
	assert.NotContains(t, out, "DADOS DE PRODUTOS")
}

func TestCompose_SectionOrderIsFixed(t *testing.T) {
	it := intent.Intent{NeedsBudgets: true, NeedsCustomers: true, NeedsCategories: true, NeedsProducts: true}
	s := facts.Summaries{
		Budgets:    budgetSummary(),
		Customers:  &facts.CustomerSummary{TotalCount: 3},
		Categories: &facts.CategorySummary{Categories: []models.CategoryStat{{Name: "Cozinha", BudgetCount: 1, TotalValue: 100}}},
		Products:   &facts.ProductSummary{Products: []models.ProductStat{{Name: "Armário", Price: 450, UsageCount: 2}}},
	}
	history := []models.Turn{{Prompt: "oi", Response: "olá"}}

	out := Compose("resumo geral de orçamentos, clientes, categorias e produtos", it, s, history)

	positions := []int{
		strings.Index(out, "Pergunta do usuário"),
		strings.Index(out, "--- DADOS DE ORÇAMENTOS ---"),
		strings.Index(out, "--- DADOS DE CLIENTES ---"),
		strings.Index(out, "--- DADOS DE CATEGORIAS ---"),
		strings.Index(out, "--- DADOS DE PRODUTOS ---"),
		strings.Index(out, "--- HISTÓRICO RECENTE DA CONVERSA ---"),
		strings.Index(out, "Instruções IMPORTANTES"),
	}
	for i, pos := range positions {
		assert.GreaterOrEqual(t, pos, 0, "section %d missing", i)
		if i > 0 {
			assert.Greater(t, pos, positions[i-1], "section %d out of order", i)
		}
	}
}

func TestCompose_CategoryLinesRankedByValue(t *testing.T) {
	it := intent.Intent{NeedsCategories: true}
	s := facts.Summaries{Categories: &facts.CategorySummary{Categories: []models.CategoryStat{
		{Name: "Cozinha", BudgetCount: 9, TotalValue: 100},
		{Name: "Quarto", BudgetCount: 1, TotalValue: 900},
	}}}

	out := Compose("categorias", it, s, nil)

	assert.Less(t, strings.Index(out, "Quarto"), strings.Index(out, "Cozinha"))
}

// ==========================
// History Block
// ==========================

func TestCompose_HistoryTruncatesLongResponses(t *testing.T) {
	long := strings.Repeat("a", 250)
	it := intent.Intent{NeedsBudgets: true}
	s := facts.Summaries{Budgets: budgetSummary()}
	history := []models.Turn{{Prompt: "pergunta anterior", Response: long}}

	out := Compose("orçamentos", it, s, history)

	assert.Contains(t, out, "Usuário: pergunta anterior")
	assert.Contains(t, out, strings.Repeat("a", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 201))
}

func TestCompose_HistoryKeepsGivenOrder(t *testing.T) {
	it := intent.Intent{NeedsBudgets: true}
	s := facts.Summaries{Budgets: budgetSummary()}
	history := []models.Turn{
		{Prompt: "primeira pergunta", Response: "r1"},
		{Prompt: "segunda pergunta", Response: "r2"},
	}

	out := Compose("orçamentos", it, s, history)

	assert.Less(t, strings.Index(out, "primeira pergunta"), strings.Index(out, "segunda pergunta"))
}

// ==========================
// Instruction Tail
// ==========================

func TestCompose_AnalysisStyleLines(t *testing.T) {
	it := intent.Intent{NeedsBudgets: true}
	s := facts.Summaries{Budgets: budgetSummary()}

	base := Compose("orçamentos", it, s, nil)
	assert.Contains(t, base, "Instruções IMPORTANTES")
	assert.NotContains(t, base, "predição")

	it.AnalysisStyle = intent.StylePrediction
	assert.Contains(t, Compose("orçamentos", it, s, nil), "O usuário quer uma predição")

	it.AnalysisStyle = intent.StyleForecast
	assert.Contains(t, Compose("orçamentos", it, s, nil), "O usuário quer uma previsão")

	it.AnalysisStyle = intent.StyleTrend
	assert.Contains(t, Compose("orçamentos", it, s, nil), "análise de tendências")

	// Comparison is detected upstream but adds no instruction line.
	it.AnalysisStyle = intent.StyleComparison
	assert.Equal(t, base, Compose("orçamentos", it, s, nil))
}

// ==========================
// Currency Formatting
// ==========================

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(1234.56))
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "R$ 1.500,00", FormatBRL(1500))
	assert.Equal(t, "R$ 12,30", FormatBRL(12.3))
}
