package similarity

import (
	"context"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/payload"
	"github.com/kailas-cloud/gamesim/internal/domain/search/filter"
	"github.com/kailas-cloud/gamesim/internal/domain/search/result"
)

// --- mockResolver ---

type mockResolver struct {
	resolveFn func(ctx context.Context, t entity.Type, ref entity.Ref) (*entity.Entity, error)
	calls     int
}

func (m *mockResolver) Resolve(ctx context.Context, t entity.Type, ref entity.Ref) (*entity.Entity, error) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, t, ref)
	}
	return nil, &domain.NotFoundError{EntityType: string(t), ID: deref(ref.ID), Name: ref.Name, ByName: !ref.ByID()}
}

// --- mockVectors ---

type searchCall struct {
	entityType entity.Type
	expr       filter.Expression
	limit      int
}

type mockVectors struct {
	fetchFn     func(ctx context.Context, t entity.Type, id int64) (*payload.Point, error)
	searchFn    func(ctx context.Context, t entity.Type, vec []float32, expr filter.Expression, limit int) ([]result.Candidate, error)
	fetchCalls  int
	searchCalls []searchCall
}

func (m *mockVectors) FetchVector(ctx context.Context, t entity.Type, id int64) (*payload.Point, error) {
	m.fetchCalls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, t, id)
	}
	return nil, domain.ErrNotIndexed
}

func (m *mockVectors) Search(
	ctx context.Context, t entity.Type, vec []float32, expr filter.Expression, limit int,
) ([]result.Candidate, error) {
	m.searchCalls = append(m.searchCalls, searchCall{entityType: t, expr: expr, limit: limit})
	if m.searchFn != nil {
		return m.searchFn(ctx, t, vec, expr, limit)
	}
	return nil, nil
}

// --- mockEmbedder ---

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 4}, nil
}

// --- helpers ---

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func int64Ptr(v int64) *int64 { return &v }

type fixture struct {
	resolver *mockResolver
	vectors  *mockVectors
	embedder *mockEmbedder
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		resolver: &mockResolver{},
		vectors:  &mockVectors{},
		embedder: &mockEmbedder{},
	}
	f.svc = New(f.resolver, f.vectors, f.embedder, nil, WithCallIDs(func() string { return "call-1" }))
	return f
}

// resolves returns a resolver func that always yields e.
func resolves(e *entity.Entity) func(context.Context, entity.Type, entity.Ref) (*entity.Entity, error) {
	return func(context.Context, entity.Type, entity.Ref) (*entity.Entity, error) {
		copied := *e
		return &copied, nil
	}
}

// indexed returns a fetch func that yields a point with p.
func indexed(p payload.Payload) func(context.Context, entity.Type, int64) (*payload.Point, error) {
	return func(context.Context, entity.Type, int64) (*payload.Point, error) {
		return &payload.Point{Vector: []float32{0.5, 0.5}, Payload: p}, nil
	}
}

// returns yields the given candidates from every search.
func returns(cands ...result.Candidate) func(context.Context, entity.Type, []float32, filter.Expression, int) ([]result.Candidate, error) {
	return func(context.Context, entity.Type, []float32, filter.Expression, int) ([]result.Candidate, error) {
		return cands, nil
	}
}

func halfLife() *payload.Game {
	return &payload.Game{
		ID:             220,
		Name:           "Half-Life 2",
		Genres:         []string{"Action", "FPS", "Sci-fi"},
		Tags:           []string{"Physics", "Classic", "Singleplayer"},
		FranchiseIDs:   []int64{1},
		FranchiseNames: []string{"Half-Life"},
		DeveloperIDs:   []int64{10},
		PublisherIDs:   []int64{10},
		TotalReviews:   int64Ptr(150000),
		IsReleased:     true,
	}
}

func gameCand(id int64, raw float64, g *payload.Game) result.Candidate {
	if g == nil {
		g = &payload.Game{Name: "Game"}
	}
	g.ID = id
	return result.Candidate{ID: id, RawScore: raw, Payload: g}
}

func companyCand(id int64, raw float64, name string) result.Candidate {
	return result.Candidate{
		ID:       id,
		RawScore: raw,
		Payload:  &payload.Company{Kind: entity.Developer, ID: id, Name: name, GameCount: int64Ptr(12)},
	}
}
