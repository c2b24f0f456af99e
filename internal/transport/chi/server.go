// Package chi wires the retrieval service into an HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/helicon-ai/datrieval/internal/db"
	"github.com/helicon-ai/datrieval/internal/domain"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
	"github.com/helicon-ai/datrieval/internal/metrics"
	retrievaluc "github.com/helicon-ai/datrieval/internal/usecase/retrieval"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest        = "bad_request"
	codeInvalidQuery      = "invalid_query"
	codeJudgeUnavailable  = "judge_unavailable"
	codeEmbeddingProvider = "embedding_provider_error"
	codeRetrievalFailed   = "retrieval_failed"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes retrieval over HTTP.
type Server struct {
	retrieval     *retrievaluc.Service
	store         db.Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(retrieval *retrievaluc.Service, store db.Pinger, logger *zap.Logger) *Server {
	s := &Server{
		retrieval: retrieval,
		store:     store,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrJudgeUnavailable, http.StatusBadGateway, codeJudgeUnavailable),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusInternalServerError, codeRetrievalFailed),
	}
	return s
}

// Routes mounts the API on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/retrieve", s.Retrieve)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type retrieveRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	TopK       int    `json:"top_k"`
}

type resultItem struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Source   string         `json:"source,omitempty"`
	Title    string         `json:"title,omitempty"`
	Score    float64        `json:"score"`
	Method   string         `json:"method"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type retrieveResponse struct {
	Results []resultItem `json:"results"`
	Count   int          `json:"count"`
}

// Retrieve handles POST /api/v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Collection == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Collection is required")
		return
	}

	results, err := s.retrieval.Retrieve(r.Context(), req.Query, req.Collection, req.TopK)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(s.retrieval.StrategyName(), "error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(s.retrieval.StrategyName(), "success").Inc()

	items := make([]resultItem, len(results))
	for i := range results {
		items[i] = resultToItem(&results[i])
	}

	writeJSON(w, http.StatusOK, retrieveResponse{
		Results: items,
		Count:   len(items),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"redis": "ok"}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		checks["redis"] = "unavailable"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func resultToItem(r *result.Result) resultItem {
	doc := r.Document()
	return resultItem{
		ID:       r.ID(),
		Content:  doc.Text(),
		Source:   doc.Source(),
		Title:    doc.Title(),
		Score:    r.Score(),
		Method:   string(r.Method()),
		Metadata: r.Metadata(),
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrJudgeUnavailable,
		domain.ErrEmbeddingProvider,
		domain.ErrRetrievalFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
