package similarity

import (
	"context"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/payload"
	"github.com/kailas-cloud/gamesim/internal/domain/search/filter"
	"github.com/kailas-cloud/gamesim/internal/domain/search/result"
)

// Resolver turns a reference into a catalog entity.
type Resolver interface {
	Resolve(ctx context.Context, t entity.Type, ref entity.Ref) (*entity.Entity, error)
}

// Vectors reads points and runs filtered nearest-neighbor searches.
type Vectors interface {
	FetchVector(ctx context.Context, t entity.Type, id int64) (*payload.Point, error)
	Search(ctx context.Context, t entity.Type, vector []float32, expr filter.Expression, limit int) ([]result.Candidate, error)
}

// Embedder vectorizes concept descriptions.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
