package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/metrics"
)

// RouterConfig configures the HTTP middleware stack.
type RouterConfig struct {
	APIKeys     []string
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
}

// NewRouter mounts the tool, health and metrics routes with the middleware stack.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimit, cfg.RateWindow))
		r.Use(BearerAuthMiddleware(cfg.APIKeys))
		r.Post("/v1/tools/find_similar", s.FindSimilar)
		r.Post("/v1/tools/search_by_concept", s.SearchByConcept)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "unknown route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}
