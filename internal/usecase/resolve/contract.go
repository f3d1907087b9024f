package resolve

import (
	"context"

	"github.com/kailas-cloud/gamesim/internal/domain/entity"
)

// Catalog is the relational lookup the resolver depends on. Every method
// returns domain.ErrNotFound when nothing matches.
type Catalog interface {
	ByID(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error)
	ByExactName(ctx context.Context, t entity.Type, name string) (*entity.Entity, error)
	ByFoldedFragment(ctx context.Context, t entity.Type, fragment string) (*entity.Entity, error)
}
