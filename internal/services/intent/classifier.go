// Package intent classifies a free-text prompt into the business-data domains
// it needs. Matching is strictly lexical: fixed keyword tables in Portuguese
// and English, scanned case-insensitively.
package intent

import (
	"strings"

	"budget-assistant/internal/models"
)

// Style is the analysis-style hint extracted from the prompt.
type Style string

const (
	StylePrediction Style = "prediction"
	StyleForecast   Style = "forecast"
	StyleTrend      Style = "trend"
	StyleComparison Style = "comparison"
)

// Intent is the structured classification of one prompt. Built fresh per
// prompt, immutable afterwards, never persisted.
type Intent struct {
	NeedsBudgets    bool
	NeedsCustomers  bool
	NeedsCategories bool
	NeedsProducts   bool

	// TimeWindowDays is 0 when the prompt names no period (unbounded).
	TimeWindowDays int

	// StatusFilter is empty when the prompt names no status.
	StatusFilter models.BudgetStatus

	// AnalysisStyle is empty when the prompt asks for no particular analysis.
	AnalysisStyle Style
}

// NeedsData reports whether any domain flag is set. When false, callers must
// skip aggregation entirely and compose the conversational fallback.
func (i Intent) NeedsData() bool {
	return i.NeedsBudgets || i.NeedsCustomers || i.NeedsCategories || i.NeedsProducts
}

var budgetKeywords = []string{
	"orçamento", "orçamentos", "budget", "budgets", "vendas", "faturamento",
	"receita", "valor", "total", "aprovado", "aceito", "negado", "pendente",
	"gerou", "gerei", "criou", "criado", "made", "created", "generated",
	"quantos", "quanto", "how many", "how much", "count", "número",
}

var customerKeywords = []string{
	"cliente", "clientes", "customer", "customers", "comprador", "compradores",
}

var categoryKeywords = []string{
	"categoria", "categorias", "category", "categories", "tipo", "tipos",
}

var productKeywords = []string{
	"produto", "produtos", "product", "products", "item", "itens",
}

// The ordered tables below are scanned in declaration order and the first
// keyword contained in the prompt wins, regardless of where it appears in the
// text.

var timeKeywords = []struct {
	word string
	days int
}{
	{"mês", 30},
	{"mes", 30},
	{"month", 30},
	{"semana", 7},
	{"week", 7},
	{"ano", 365},
	{"year", 365},
	{"trimestre", 90},
	{"quarter", 90},
}

var statusKeywords = []struct {
	word   string
	status models.BudgetStatus
}{
	{"aprovado", models.StatusAccepted},
	{"aceito", models.StatusAccepted},
	{"accepted", models.StatusAccepted},
	{"negado", models.StatusRejected},
	{"rejected", models.StatusRejected},
	{"pendente", models.StatusPending},
	{"pending", models.StatusPending},
}

var analysisKeywords = []struct {
	word  string
	style Style
}{
	{"predição", StylePrediction},
	{"predicao", StylePrediction},
	{"prediction", StylePrediction},
	{"previsão", StyleForecast},
	{"previsao", StyleForecast},
	{"forecast", StyleForecast},
	{"tendência", StyleTrend},
	{"tendencia", StyleTrend},
	{"trend", StyleTrend},
	{"comparação", StyleComparison},
	{"comparacao", StyleComparison},
	{"comparison", StyleComparison},
}

// Classify maps a raw prompt to an Intent. Pure and total: an empty or
// unmatched prompt yields the zero Intent, never an error.
func Classify(prompt string) Intent {
	var it Intent

	p := strings.ToLower(strings.TrimSpace(prompt))
	if p == "" {
		return it
	}

	it.NeedsBudgets = containsAny(p, budgetKeywords)
	it.NeedsCustomers = containsAny(p, customerKeywords)
	it.NeedsCategories = containsAny(p, categoryKeywords)
	it.NeedsProducts = containsAny(p, productKeywords)

	for _, t := range timeKeywords {
		if strings.Contains(p, t.word) {
			it.TimeWindowDays = t.days
			break
		}
	}

	for _, s := range statusKeywords {
		if strings.Contains(p, s.word) {
			it.StatusFilter = s.status
			break
		}
	}

	for _, a := range analysisKeywords {
		if strings.Contains(p, a.word) {
			it.AnalysisStyle = a.style
			break
		}
	}

	return it
}

func containsAny(prompt string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(prompt, k) {
			return true
		}
	}
	return false
}
