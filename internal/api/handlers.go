// Package api is the thin HTTP surface over the turn orchestrator: decode,
// validate, orchestrate, encode. No business logic lives here.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "budget-assistant/internal/common/errors"
	"budget-assistant/internal/common/logger"
	"budget-assistant/internal/models"
	"budget-assistant/internal/services/contextbuild"
	"budget-assistant/internal/services/conversation"
	"budget-assistant/internal/services/facts"
)

const (
	historyPageSize  = 50
	defaultTrendDays = 90
	maxTrendDays     = 365
)

// TurnOrchestrator is the use-case driver behind the chat routes.
type TurnOrchestrator interface {
	StartSession(ctx context.Context, req conversation.StartRequest) (*conversation.TurnResult, error)
	ContinueSession(ctx context.Context, req conversation.ContinueRequest) (*conversation.TurnResult, error)
}

// HistoryReader backs the history route.
type HistoryReader interface {
	HistoryByUser(ctx context.Context, userID string, limit int) ([]models.Turn, error)
}

// FactsProvider backs the routes that read the platform database directly:
// the sales-trends analysis and the customer listing.
type FactsProvider interface {
	GetSalesTrends(ctx context.Context, userID string, days int) (*facts.SalesTrends, error)
	ListCustomers(ctx context.Context, userID string) ([]models.Customer, error)
}

type Server struct {
	orchestrator TurnOrchestrator
	history      HistoryReader
	facts        FactsProvider
	generator    conversation.Generator
	logger       logger.Logger
}

func NewServer(orc TurnOrchestrator, history HistoryReader, provider FactsProvider, gen conversation.Generator, log logger.Logger) *Server {
	return &Server{
		orchestrator: orc,
		history:      history,
		facts:        provider,
		generator:    gen,
		logger:       log.With(map[string]interface{}{"component": "api"}),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat/ask", s.handleAsk)
	mux.HandleFunc("POST /chat/sessions/{id}/ask", s.handleContinue)
	mux.HandleFunc("GET /chat/history", s.handleHistory)
	mux.HandleFunc("GET /customers", s.handleCustomers)
	mux.HandleFunc("GET /analysis/{user_id}/sales-trends", s.handleSalesTrends)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

type askRequest struct {
	UserID string `json:"user_id"`
	Prompt string `json:"prompt"`
}

type continueRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("unreadable body"))
		return
	}
	if msg := validateBody(askSchema, body); msg != "" {
		s.writeError(w, apperrors.NewValidationError(msg))
		return
	}

	var req askRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	result, err := s.orchestrator.StartSession(r.Context(), conversation.StartRequest{
		UserID: req.UserID,
		Prompt: req.Prompt,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("unreadable body"))
		return
	}
	if msg := validateBody(continueSchema, body); msg != "" {
		s.writeError(w, apperrors.NewValidationError(msg))
		return
	}

	var req continueRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	result, err := s.orchestrator.ContinueSession(r.Context(), conversation.ContinueRequest{
		SessionID: sessionID,
		Prompt:    req.Prompt,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		s.writeError(w, apperrors.NewValidationError("user_id query parameter is required"))
		return
	}

	turns, err := s.history.HistoryByUser(r.Context(), userID, historyPageSize)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if turns == nil {
		turns = []models.Turn{}
	}
	s.writeJSON(w, http.StatusOK, turns)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		s.writeError(w, apperrors.NewValidationError("user_id query parameter is required"))
		return
	}

	customers, err := s.facts.ListCustomers(r.Context(), userID)
	if err != nil {
		s.writeError(w, apperrors.NewDatabaseConnectionFailedError(err))
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	s.writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleSalesTrends(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	days := defaultTrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTrendDays {
			s.writeError(w, apperrors.NewValidationError("days must be between 1 and 365"))
			return
		}
		days = parsed
	}

	trends, err := s.facts.GetSalesTrends(r.Context(), userID, days)
	if err != nil {
		s.writeError(w, apperrors.NewDatabaseConnectionFailedError(err))
		return
	}

	analysis, err := s.generator.Generate(r.Context(), salesTrendsPrompt(trends))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     trends,
		"analysis": analysis,
	})
}

// salesTrendsPrompt renders the coaching prompt for the analysis endpoint.
func salesTrendsPrompt(t *facts.SalesTrends) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Você é um analista de negócios especialista em empresas de móveis planejados.\n")
	fmt.Fprintf(&b, "Analise os dados de vendas do usuário '%s' nos últimos %d dias e forneça insights acionáveis.\n\n", t.UserID, t.PeriodDays)
	fmt.Fprintf(&b, "Dados Consolidados:\n")
	fmt.Fprintf(&b, "- Número de Orçamentos Aprovados: %d\n", t.ApprovedCount)
	fmt.Fprintf(&b, "- Faturamento Total: %s\n", contextbuild.FormatBRL(t.TotalSalesValue))
	fmt.Fprintf(&b, "- Ticket Médio por Orçamento: %s\n\n", contextbuild.FormatBRL(t.AverageBudgetValue))

	b.WriteString("Top 5 Categorias Mais Populares:\n")
	if len(t.TopCategories) == 0 {
		b.WriteString("Nenhuma\n")
	}
	for _, cat := range t.TopCategories {
		fmt.Fprintf(&b, "- %s (%d)\n", cat.Name, cat.BudgetCount)
	}

	b.WriteString("\nTop 5 Produtos Mais Populares:\n")
	if len(t.TopProducts) == 0 {
		b.WriteString("Nenhum\n")
	}
	for _, prod := range t.TopProducts {
		fmt.Fprintf(&b, "- %s (%d)\n", prod.Name, prod.UsageCount)
	}

	b.WriteString("\nGere uma análise em 3 partes: Resumo Executivo, Pontos de Destaque, ")
	b.WriteString("Sugestões Estratégicas e Pessoais. Use um tom de coaching direcionado ao usuário.")
	return b.String()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{"error": err.Error()})
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)

	body := errorBody{Code: "INTERNAL_ERROR", Message: "internal error"}
	if se := apperrors.AsStandard(err); se != nil {
		body.Code = string(se.Code)
		body.Message = se.Message
		// Details are client-facing only for client errors.
		if status < http.StatusInternalServerError {
			body.Details = se.Details
		}
	}

	s.writeJSON(w, status, map[string]errorBody{"error": body})
}
