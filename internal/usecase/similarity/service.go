// Package similarity implements the find_similar and search_by_concept tools.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/payload"
	"github.com/kailas-cloud/gamesim/internal/domain/search/boost"
	"github.com/kailas-cloud/gamesim/internal/domain/search/criteria"
	"github.com/kailas-cloud/gamesim/internal/domain/search/request"
	"github.com/kailas-cloud/gamesim/internal/domain/search/result"
	"github.com/kailas-cloud/gamesim/internal/logger"
	"github.com/kailas-cloud/gamesim/internal/metrics"
)

// Tool names.
const (
	ToolFindSimilar     = "find_similar"
	ToolSearchByConcept = "search_by_concept"
)

// Service runs similarity and concept searches.
type Service struct {
	resolver Resolver
	vectors  Vectors
	embedder Embedder
	weights  boost.Weights
	logger   *zap.Logger
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithWeights overrides the boost weights.
func WithWeights(w boost.Weights) Option {
	return func(s *Service) { s.weights = w }
}

// WithCallIDs overrides call id generation.
func WithCallIDs(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New creates a similarity service.
func New(r Resolver, v Vectors, e Embedder, l *zap.Logger, opts ...Option) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Service{
		resolver: r,
		vectors:  v,
		embedder: e,
		weights:  boost.DefaultWeights(),
		logger:   l,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FindSimilar returns entities of the same type nearest to the referenced one.
// Game results are re-ranked by shared franchise, studio, genres and tags.
func (s *Service) FindSimilar(ctx context.Context, args FindSimilarArgs) Response {
	callID := s.newID()
	ctx = logger.WithCall(ctx, s.logger, ToolFindSimilar, callID)
	start := time.Now()

	resp, err := s.findSimilar(ctx, &args)
	return s.finish(ctx, ToolFindSimilar, args.EntityType, callID, start, resp, err)
}

// SearchByConcept returns games nearest to a free-text description.
func (s *Service) SearchByConcept(ctx context.Context, args ConceptArgs) Response {
	callID := s.newID()
	ctx = logger.WithCall(ctx, s.logger, ToolSearchByConcept, callID)
	start := time.Now()

	resp, err := s.searchByConcept(ctx, &args)
	return s.finish(ctx, ToolSearchByConcept, string(entity.Game), callID, start, resp, err)
}

func (s *Service) findSimilar(ctx context.Context, args *FindSimilarArgs) (*Response, error) {
	args.Filters = args.Filters.Normalized()
	if err := validateArgs(args); err != nil {
		return nil, err
	}
	if err := args.checkReference(); err != nil {
		return nil, err
	}
	t := entity.Type(args.EntityType)
	log := logger.FromContext(ctx)

	src, err := s.resolver.Resolve(ctx, t, entity.Ref{ID: args.ReferenceID, Name: args.ReferenceName})
	if err != nil {
		return nil, err
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	log.Debug("reference resolved", zap.Int64("id", src.ID), zap.String("name", src.Name))

	point, err := s.vectors.FetchVector(ctx, t, src.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotIndexed) {
			return nil, &domain.IndexingError{EntityType: string(t), ID: src.ID, Name: src.Name}
		}
		return nil, fmt.Errorf("%w: fetch %s %d: %w", domain.ErrSearchFailed, t, src.ID, err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}

	source := *src
	if point.Payload != nil {
		source.Metrics = src.Metrics.Merge(point.Payload.Metrics())
	}

	expr, err := criteria.Build(t, args.Filters, &source)
	if err != nil {
		return nil, err
	}
	req, err := request.NewSimilar(t, expr, args.Limit)
	if err != nil {
		return nil, domain.Validationf("%s", err)
	}

	candidates, err := s.vectors.Search(ctx, t, point.Vector, req.Filters(), req.Candidates())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSearchFailed, t.Collection(), err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}

	candidates = without(candidates, src.ID)
	log.Debug("candidates fetched",
		zap.Int("requested", req.Candidates()),
		zap.Int("kept", len(candidates)),
	)

	var ranked []result.Ranked
	if t == entity.Game {
		sourceGame, _ := point.Payload.(*payload.Game)
		ranked = s.rerank(sourceGame, candidates, req.Limit())
	} else {
		ranked = unboosted(candidates, req.Limit())
	}

	filters, params := req.Filters(), req.Params()
	return &Response{
		Success:    true,
		Reference:  &Reference{ID: src.ID, Name: src.Name, EntityType: t},
		Results:    ranked,
		TotalFound: len(candidates),
		Debug:      &Debug{Filter: &filters, SearchParams: &params},
	}, nil
}

func (s *Service) searchByConcept(ctx context.Context, args *ConceptArgs) (*Response, error) {
	args.Filters = args.Filters.Normalized()
	if err := validateArgs(args); err != nil {
		return nil, err
	}
	if err := args.checkDescription(); err != nil {
		return nil, err
	}
	if args.Filters.HasRelative() {
		return nil, domain.Validationf("popularity_comparison and review_comparison need a reference game; use %s", ToolFindSimilar)
	}

	expr, err := criteria.Build(entity.Game, args.Filters, nil)
	if err != nil {
		return nil, err
	}
	req, err := request.NewConcept(args.Description, expr, args.Limit)
	if err != nil {
		return nil, domain.Validationf("%s", err)
	}

	emb, err := s.embedder.Embed(ctx, req.Query())
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingProviderError) || domain.IsCanceled(err) {
			return nil, fmt.Errorf("embed concept: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}

	candidates, err := s.vectors.Search(ctx, entity.Game, emb.Embedding, req.Filters(), req.Candidates())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSearchFailed, entity.Game.Collection(), err)
	}

	filters, params := req.Filters(), req.Params()
	return &Response{
		Success:    true,
		Results:    unboosted(candidates, req.Limit()),
		TotalFound: len(candidates),
		Debug:      &Debug{Filter: &filters, SearchParams: &params},
	}, nil
}

func (s *Service) rerank(source *payload.Game, candidates []result.Candidate, limit int) []result.Ranked {
	boosted := boost.Boost(source, candidates, s.weights)
	boosted = boosted[:min(len(boosted), limit)]
	out := make([]result.Ranked, len(boosted))
	for i, b := range boosted {
		out[i] = result.Boosted(b.Candidate, b.Score, b.Reasons)
		for _, sig := range b.Signals {
			metrics.SimilarityBoostSignalsTotal.WithLabelValues(string(sig)).Inc()
		}
	}
	return out
}

// finish turns the pipeline outcome into a response and records it.
func (s *Service) finish(
	ctx context.Context, tool, entityType, callID string, start time.Time, resp *Response, err error,
) Response {
	if err == nil {
		// a call canceled after the last step still must not report success
		err = alive(ctx)
	}

	label := entityType
	if !entity.Type(entityType).IsValid() {
		label = "invalid"
	}
	log := logger.FromContext(ctx)
	elapsed := time.Since(start)
	metrics.SimilarityRequestDuration.WithLabelValues(tool).Observe(elapsed.Seconds())

	if err != nil {
		code := domain.ErrorCode(err)
		metrics.SimilarityRequestsTotal.WithLabelValues(tool, label, code).Inc()
		fields := []zap.Field{zap.String("error_code", code), zap.Error(err), zap.Duration("duration", elapsed)}
		switch code {
		case domain.CodeSearchFailed, domain.CodeEmbeddingFailed, domain.CodeLookupFailed, domain.CodeInternal:
			log.Error("similarity call failed", fields...)
		default:
			log.Warn("similarity call rejected", fields...)
		}
		return Response{
			Error:     message(err),
			ErrorCode: code,
			Debug:     &Debug{CallID: callID},
		}
	}

	metrics.SimilarityRequestsTotal.WithLabelValues(tool, label, "ok").Inc()
	metrics.SimilarityResults.WithLabelValues(tool).Observe(float64(len(resp.Results)))
	log.Info("similarity call done",
		zap.Int("results", len(resp.Results)),
		zap.Int("total_found", resp.TotalFound),
		zap.Duration("duration", elapsed),
	)
	resp.Debug.CallID = callID
	return *resp
}

// message is the user-facing text for err.
func message(err error) string {
	var (
		notFound   *domain.NotFoundError
		indexing   *domain.IndexingError
		comparison *domain.ComparisonUnavailableError
	)
	switch {
	case domain.IsCanceled(err):
		return "Request canceled before completion"
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &indexing):
		return indexing.Error()
	case errors.As(err, &comparison):
		return comparison.Error()
	case errors.Is(err, domain.ErrValidation):
		return "Invalid arguments: " + strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	default:
		return err.Error()
	}
}

func alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.Canceled(err)
	}
	return nil
}

// without drops the candidate with the given id, keeping order.
func without(candidates []result.Candidate, id int64) []result.Candidate {
	out := make([]result.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func unboosted(candidates []result.Candidate, limit int) []result.Ranked {
	candidates = candidates[:min(len(candidates), limit)]
	out := make([]result.Ranked, len(candidates))
	for i, c := range candidates {
		out[i] = result.Unboosted(c)
	}
	return out
}
