// Package collection bootstraps the FT indexes of the game, publisher and
// developer collections.
package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/gamesim/internal/db"
	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
)

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo creates and inspects collection indexes.
type Repo struct {
	store  store
	prefix string
	vector domain.VectorConfig
	hnsw   HNSWConfig
}

// New creates a collection repository.
func New(s store, prefix string, vector domain.VectorConfig) *Repo {
	return &Repo{store: s, prefix: prefix, vector: vector, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Status reports whether the index of a collection exists.
type Status struct {
	Type    entity.Type `json:"entity_type"`
	Index   string      `json:"index"`
	Exists  bool        `json:"exists"`
	Created bool        `json:"created,omitempty"`
}

// Ensure creates the index of collection t unless it already exists.
func (r *Repo) Ensure(ctx context.Context, t entity.Type) (Status, error) {
	def, err := buildIndex(r.prefix, t, r.vector, r.hnsw)
	if err != nil {
		return Status{}, fmt.Errorf("build index %s: %w", t.Collection(), err)
	}
	st := Status{Type: t, Index: def.Name}

	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return st, fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists {
		st.Exists = true
		return st, nil
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// lost a race with another bootstrapper
		if errors.Is(err, db.ErrIndexExists) {
			st.Exists = true
			return st, nil
		}
		return st, fmt.Errorf("create index %s: %w", def.Name, err)
	}
	st.Exists, st.Created = true, true
	return st, nil
}

// EnsureAll ensures the indexes of every collection, stopping at the first failure.
func (r *Repo) EnsureAll(ctx context.Context) ([]Status, error) {
	out := make([]Status, 0, len(entity.Types()))
	for _, t := range entity.Types() {
		st, err := r.Ensure(ctx, t)
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}

// Check reports the index status of every collection without creating anything.
func (r *Repo) Check(ctx context.Context) ([]Status, error) {
	out := make([]Status, 0, len(entity.Types()))
	for _, t := range entity.Types() {
		name := indexName(r.prefix, t)
		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("check index %s: %w", name, err)
		}
		out = append(out, Status{Type: t, Index: name, Exists: exists})
	}
	return out, nil
}

// Drop removes the index of collection t. Stored points are kept.
func (r *Repo) Drop(ctx context.Context, t entity.Type) error {
	name := indexName(r.prefix, t)
	if err := r.store.DropIndex(ctx, name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}
