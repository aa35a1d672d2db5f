// Package contextbuild assembles the classifier output, the aggregated facts
// and the recent history into the single text block handed to the model.
// Composition is pure: section order is fixed and no I/O happens here.
package contextbuild

import (
	"fmt"
	"strings"

	"budget-assistant/internal/models"
	"budget-assistant/internal/services/facts"
	"budget-assistant/internal/services/intent"
)

const (
	// historyLimit is the number of prior turns carried into the context.
	historyLimit = 5
	// historyResponseBudget truncates each prior response in the history block.
	historyResponseBudget = 200
)

// HistoryLimit exposes the history window to the orchestrator so the fetch
// and the block agree on the same bound.
func HistoryLimit() int { return historyLimit }

// Compose builds the model context. Summaries fields left nil (domain not
// requested) produce no section; the section order is fixed regardless of
// which domains are present: prompt, budgets, customers, categories,
// products, history, instructions.
func Compose(prompt string, it intent.Intent, s facts.Summaries, history []models.Turn) string {
	if !it.NeedsData() {
		return composeFallback(prompt)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pergunta do usuário: %s\n", prompt)
	b.WriteString("\nDados disponíveis:\n")

	if s.Budgets != nil {
		writeBudgetSection(&b, s.Budgets)
	}
	if s.Customers != nil {
		writeCustomerSection(&b, s.Customers)
	}
	if s.Categories != nil {
		writeCategorySection(&b, s.Categories)
	}
	if s.Products != nil {
		writeProductSection(&b, s.Products)
	}
	if len(history) > 0 {
		writeHistorySection(&b, history)
	}

	writeInstructions(&b, it.AnalysisStyle)
	return b.String()
}

func composeFallback(prompt string) string {
	return fmt.Sprintf(`Pergunta do usuário: %s

Instruções:
- Você é um assistente de análise de negócios amigável
- Responda de forma natural e conversacional
- Se o usuário fizer uma saudação ou pergunta casual, responda normalmente
- Se precisar de dados específicos sobre orçamentos, clientes, produtos ou categorias, peça para o usuário ser mais específico
- Seja útil e educado em suas respostas`, prompt)
}

func writeBudgetSection(b *strings.Builder, s *facts.BudgetSummary) {
	b.WriteString("\n--- DADOS DE ORÇAMENTOS ---\n")
	fmt.Fprintf(b, "Total de orçamentos: %d\n", s.TotalCount)
	fmt.Fprintf(b, "Valor total: %s\n", FormatBRL(s.TotalValue))
	fmt.Fprintf(b, "Valor médio: %s\n", FormatBRL(s.AverageValue))

	b.WriteString("\nResumo por status:\n")
	for _, status := range models.AllBudgetStatuses() {
		st := s.ByStatus[status]
		fmt.Fprintf(b, "- %s: %d orçamentos, %s\n", status, st.Count, FormatBRL(st.TotalValue))
	}
}

func writeCustomerSection(b *strings.Builder, s *facts.CustomerSummary) {
	b.WriteString("\n--- DADOS DE CLIENTES ---\n")
	fmt.Fprintf(b, "Total de clientes: %d\n", s.TotalCount)
}

func writeCategorySection(b *strings.Builder, s *facts.CategorySummary) {
	b.WriteString("\n--- DADOS DE CATEGORIAS ---\n")
	b.WriteString("Top categorias por valor:\n")
	for _, cat := range facts.TopCategoriesByValue(s.Categories) {
		fmt.Fprintf(b, "- %s: %d orçamentos, %s\n", cat.Name, cat.BudgetCount, FormatBRL(cat.TotalValue))
	}
}

func writeProductSection(b *strings.Builder, s *facts.ProductSummary) {
	b.WriteString("\n--- DADOS DE PRODUTOS ---\n")
	b.WriteString("Top produtos por uso:\n")
	for _, prod := range facts.TopProductsByUsage(s.Products) {
		fmt.Fprintf(b, "- %s: %s, usado %d vezes\n", prod.Name, FormatBRL(prod.Price), prod.UsageCount)
	}
}

// writeHistorySection lists prior turns oldest first. Callers pass at most
// historyLimit turns already in chronological order.
func writeHistorySection(b *strings.Builder, history []models.Turn) {
	b.WriteString("\n--- HISTÓRICO RECENTE DA CONVERSA ---\n")
	for _, t := range history {
		fmt.Fprintf(b, "Usuário: %s\n", t.Prompt)
		fmt.Fprintf(b, "Assistente: %s\n", truncate(t.Response, historyResponseBudget))
	}
}

func writeInstructions(b *strings.Builder, style intent.Style) {
	b.WriteString("\nInstruções IMPORTANTES:\n")
	b.WriteString("- Você é um assistente de análise de negócios\n")
	b.WriteString("- Responda baseado nos dados fornecidos acima\n")
	b.WriteString("- Se os dados mostram 0 orçamentos, diga isso claramente\n")
	b.WriteString("- Se houver dados, seja específico nos números\n")
	b.WriteString("- Formate números em português brasileiro (R$ 1.234,56)\n")
	b.WriteString("- Seja analítico e dê insights sobre os dados\n")

	switch style {
	case intent.StylePrediction:
		b.WriteString("- O usuário quer uma predição. Use os dados históricos para fazer projeções realistas\n")
	case intent.StyleForecast:
		b.WriteString("- O usuário quer uma previsão. Analise tendências nos dados históricos\n")
	case intent.StyleTrend:
		b.WriteString("- O usuário quer análise de tendências. Compare períodos e identifique padrões\n")
	case intent.StyleComparison:
		// Detected but intentionally adds no instruction line, matching the
		// behavior the product shipped with.
	}
}

func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "..."
}
