// Package vectors reads entity points and runs filtered KNN searches over the
// per-type collections.
package vectors

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/db"
	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/payload"
	"github.com/kailas-cloud/gamesim/internal/domain/search/filter"
	"github.com/kailas-cloud/gamesim/internal/domain/search/result"
	"github.com/kailas-cloud/gamesim/internal/logger"
)

// VectorField is the JSON attribute holding the embedding of a point.
const VectorField = "__vector"

// store is the consumer interface for vector points (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/similarity.Vectors.
type Repo struct {
	store  store
	prefix string
}

// New creates a vector repository. prefix namespaces every key and index.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// FetchVector returns the point of entity id. A missing point or a point
// without a vector yields domain.ErrNotIndexed.
func (r *Repo) FetchVector(ctx context.Context, t entity.Type, id int64) (*payload.Point, error) {
	key := PointKey(r.prefix, t, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s %d: %w", t, id, domain.ErrNotIndexed)
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}

	doc, err := unwrapRoot(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	var v struct {
		Vector []float32 `json:"__vector"`
	}
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("decode vector %s: %w", key, err)
	}
	if len(v.Vector) == 0 {
		return nil, fmt.Errorf("%s %d has no vector: %w", t, id, domain.ErrNotIndexed)
	}

	p, err := payload.Decode(t, doc)
	if err != nil {
		return nil, fmt.Errorf("payload %s: %w", key, err)
	}
	return &payload.Point{Vector: v.Vector, Payload: p}, nil
}

// Search returns up to limit nearest points of collection t, pre-filtered by
// expr, with their payload fields decoded. Order is as returned by the store.
// Hits whose key or payload cannot be decoded are skipped.
func (r *Repo) Search(
	ctx context.Context, t entity.Type,
	vector []float32, expr filter.Expression, limit int,
) ([]result.Candidate, error) {
	fields := payload.Fields(t)
	returns := make([]string, len(fields))
	for i, f := range fields {
		returns[i] = "$." + f
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName(r.prefix, t),
		Filters:      expr,
		Vector:       vector,
		K:            limit,
		ReturnFields: returns,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", t.Collection(), err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	log := logger.FromContext(ctx)
	keyPrefix := CollectionPrefix(r.prefix, t)
	out := make([]result.Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id, err := strconv.ParseInt(strings.TrimPrefix(e.Key, keyPrefix), 10, 64)
		if err != nil {
			log.Warn("skip hit with unexpected key", zap.String("key", e.Key))
			continue
		}
		p, err := payload.FromFields(t, e.Fields)
		if err != nil {
			log.Warn("skip hit with invalid payload", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		out = append(out, result.Candidate{ID: id, RawScore: e.Score, Payload: p})
	}
	return out, nil
}

// PointKey returns the key of a point.
func PointKey(prefix string, t entity.Type, id int64) string {
	return CollectionPrefix(prefix, t) + strconv.FormatInt(id, 10)
}

// IndexName returns the FT index name of a collection.
func IndexName(prefix string, t entity.Type) string {
	return fmt.Sprintf("%s%s:idx", prefix, t.Collection())
}

// CollectionPrefix returns the key prefix shared by the points of a collection.
func CollectionPrefix(prefix string, t entity.Type) string {
	return fmt.Sprintf("%s%s:", prefix, t.Collection())
}

// unwrapRoot strips the array JSON.GET wraps around a "$" result.
func unwrapRoot(raw []byte) ([]byte, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		// legacy (non-JSONPath) replies return the document itself
		if json.Valid(raw) {
			return raw, nil
		}
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotIndexed
	}
	return docs[0], nil
}
