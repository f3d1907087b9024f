// Package request normalizes similarity and concept search parameters.
package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed concept description length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxResults     = 50
)

// Params describes the vector-store call, echoed in debug output.
type Params struct {
	Collection string `json:"collection"`
	Limit      int    `json:"limit"`
	Candidates int    `json:"candidates"`
}

// Request is a validated nearest-neighbor query.
type Request struct {
	entityType entity.Type
	query      string
	filters    filter.Expression
	limit      int
	candidates int
}

// NewSimilar builds a find-similar request. Games over-fetch to leave room for
// re-ranking; other types fetch one extra to absorb the excluded source.
func NewSimilar(t entity.Type, filters filter.Expression, limit int) (Request, error) {
	if !t.IsValid() {
		return Request{}, fmt.Errorf("invalid entity type: %q", t)
	}
	limit, err := Limit(limit)
	if err != nil {
		return Request{}, err
	}
	candidates := min(limit+1, MaxResults)
	if t == entity.Game {
		candidates = min(2*limit, MaxResults)
	}
	return Request{entityType: t, filters: filters, limit: limit, candidates: candidates}, nil
}

// NewConcept builds a free-text game search request.
func NewConcept(query string, filters filter.Expression, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("description is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("description too long (max %d chars)", MaxQueryLength)
	}
	limit, err := Limit(limit)
	if err != nil {
		return Request{}, err
	}
	return Request{
		entityType: entity.Game,
		query:      query,
		filters:    filters,
		limit:      limit,
		candidates: limit,
	}, nil
}

// Limit applies the default to zero and clamps to MaxResults.
func Limit(n int) (int, error) {
	switch {
	case n < 0:
		return 0, fmt.Errorf("limit must not be negative")
	case n == 0:
		return DefaultLimit, nil
	case n > MaxResults:
		return MaxResults, nil
	default:
		return n, nil
	}
}

// EntityType returns the searched collection's entity type.
func (r *Request) EntityType() entity.Type { return r.entityType }

// Query returns the trimmed concept description.
func (r *Request) Query() string { return r.query }

// Filters returns the pre-filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Candidates returns the number of neighbors to request from the store.
func (r *Request) Candidates() int { return r.candidates }

// Params returns the debug description of the store call.
func (r *Request) Params() Params {
	return Params{Collection: r.entityType.Collection(), Limit: r.limit, Candidates: r.candidates}
}
