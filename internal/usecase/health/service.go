package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that only concept search is affected.
	Degraded Status = "degraded"
	// Unhealthy indicates that similarity search cannot run.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names.
const (
	VectorStore = "vector_store"
	Catalog     = "catalog"
	Embedding   = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	vectors   Pinger
	catalog   Pinger
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(vectors, catalog Pinger, embedding EmbeddingChecker) *Service {
	return &Service{vectors: vectors, catalog: catalog, embedding: embedding}
}

// Check runs health checks against all components. A failing store makes the
// service unhealthy; a failing embedding provider only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)
	status := Healthy

	if !record(ctx, checks, VectorStore, s.vectors.Ping(ctx)) {
		status = Unhealthy
	}
	if !record(ctx, checks, Catalog, s.catalog.Ping(ctx)) {
		status = Unhealthy
	}
	if s.embedding != nil {
		if !record(ctx, checks, Embedding, s.embedding.HealthCheck(ctx)) && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}

func record(ctx context.Context, checks map[string]CheckResult, name string, err error) bool {
	if err != nil {
		logger.FromContext(ctx).Warn("health check failed", zap.String("component", name), zap.Error(err))
		checks[name] = CheckError
		return false
	}
	checks[name] = CheckOK
	return true
}
