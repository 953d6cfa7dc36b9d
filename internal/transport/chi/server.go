// Package chi exposes the search service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/logger"
	healthuc "github.com/kailas-cloud/jdih-search/internal/usecase/health"
	searchuc "github.com/kailas-cloud/jdih-search/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest      = "bad_request"
	CodeValidation      = "validation_failed"
	CodeIndexNotReady   = "index_not_ready"
	CodeEncoderTimeout  = "embedding_timeout"
	CodeEncoderFailure  = "embedding_provider_error"
	CodeRateLimited     = "rate_limited"
	CodeInternal        = "internal_error"
	maxRequestBodyBytes = 64 << 10
	retryAfterSeconds   = 5
)

// Searcher runs a query against the published index.
type Searcher interface {
	Search(ctx context.Context, query string) (searchuc.Response, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	Search *string `json:"search"`
}

// ProcessResponse is the body returned by POST /process.
type ProcessResponse struct {
	Results []int64 `json:"results"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks"`
	Documents    int               `json:"documents"`
	IndexBuiltAt string            `json:"index_built_at,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search: search,
		health: health,
		logger: logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, CodeIndexNotReady),
			sentinelHandler(domain.ErrEncoderTimeout, http.StatusServiceUnavailable, CodeEncoderTimeout),
			sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusServiceUnavailable, CodeEncoderFailure),
		},
	}
}

// Process handles POST /process.
func (s *Server) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Search == nil {
		writeError(w, http.StatusBadRequest, CodeValidation, `field "search" is required`)
		return
	}

	resp, err := s.search.Search(r.Context(), *req.Search)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	if resp.Degraded {
		w.Header().Set("X-Search-Degraded", "true")
	}
	writeJSON(w, http.StatusOK, ProcessResponse{Results: resp.IDs})
}

// HealthCheck handles GET /health. Only an unready index fails the probe.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	resp := HealthResponse{Status: string(report.Status), Checks: checks, Documents: report.Documents}
	if !report.IndexBuiltAt.IsZero() {
		resp.IndexBuiltAt = report.IndexBuiltAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, httpStatus, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		if domain.IsRetryable(err) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
