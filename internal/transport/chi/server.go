package chi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/logger"
	healthuc "github.com/kailas-cloud/gamesim/internal/usecase/health"
	"github.com/kailas-cloud/gamesim/internal/usecase/similarity"
)

// maxBodyBytes bounds tool request bodies.
const maxBodyBytes = 1 << 20

// Error codes of transport-level failures. Tool failures are reported inside
// a 200 response with the tool's own error_code.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// Tools runs the similarity tools.
type Tools interface {
	FindSimilar(ctx context.Context, args similarity.FindSimilarArgs) similarity.Response
	SearchByConcept(ctx context.Context, args similarity.ConceptArgs) similarity.Response
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ErrorResponse is the body of a transport-level failure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server serves the similarity tools over HTTP.
type Server struct {
	tools  Tools
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(tools Tools, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{tools: tools, health: health, logger: logger}
}

// FindSimilar handles POST /v1/tools/find_similar.
func (s *Server) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var args similarity.FindSimilarArgs
	if !s.decode(w, r, &args) {
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp := s.tools.FindSimilar(ctx, args)
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// SearchByConcept handles POST /v1/tools/search_by_concept.
func (s *Server) SearchByConcept(w http.ResponseWriter, r *http.Request) {
	var args similarity.ConceptArgs
	if !s.decode(w, r, &args) {
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp := s.tools.SearchByConcept(ctx, args)
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	logger.FromContextOr(r.Context(), s.logger).Debug("undecodable request body", zap.Error(err))

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
	return false
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
