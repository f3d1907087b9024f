// Package catalog looks up games, publishers and developers in the relational
// store and loads the metrics used as comparison baselines.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
)

// querier is the consumer interface over *pgxpool.Pool (ISP).
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements usecase/resolve.Catalog.
type Repo struct {
	db querier
}

// New creates a catalog repository.
func New(q querier) *Repo {
	return &Repo{db: q}
}

// Open connects a pgx pool. maxConns <= 0 keeps the pool default.
func Open(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// ByID returns the entity with the given id, or domain.ErrNotFound.
func (r *Repo) ByID(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error) {
	return r.one(ctx, t, byID, id)
}

// ByExactName returns the lowest-id entity whose name equals name ignoring
// case, or domain.ErrNotFound.
func (r *Repo) ByExactName(ctx context.Context, t entity.Type, name string) (*entity.Entity, error) {
	return r.one(ctx, t, byExactName, name)
}

// ByFoldedFragment returns the lowest-id entity whose name, lowercased and
// stripped of everything but letters and digits, contains fragment. fragment
// must already be folded the same way.
func (r *Repo) ByFoldedFragment(ctx context.Context, t entity.Type, fragment string) (*entity.Entity, error) {
	if fragment == "" {
		return nil, domain.ErrNotFound
	}
	return r.one(ctx, t, byFragment, fragment)
}

func (r *Repo) one(ctx context.Context, t entity.Type, by lookup, arg any) (*entity.Entity, error) {
	q, err := lookupSQL(t, by)
	if err != nil {
		return nil, err
	}

	e := &entity.Entity{Type: t}
	var dest []any
	if t == entity.Game {
		dest = []any{
			&e.ID, &e.Name,
			&e.Metrics.TotalReviews, &e.Metrics.ReviewPercentage, &e.Metrics.PriceCents,
			&e.Metrics.PublisherIDs, &e.Metrics.DeveloperIDs,
		}
	} else {
		dest = []any{&e.ID, &e.Name, &e.Metrics.GameCount}
	}

	if err := r.db.QueryRow(ctx, q, arg).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query %s: %w", t.Collection(), err)
	}
	return e, nil
}
