// Package entity holds the catalog entities that similarity queries are anchored on.
package entity

import "fmt"

// Type is the kind of catalog entity.
type Type string

// Entity type constants.
const (
	Game      Type = "game"
	Publisher Type = "publisher"
	Developer Type = "developer"
)

// Types lists every supported entity type.
func Types() []Type { return []Type{Game, Publisher, Developer} }

// IsValid checks if t is one of the supported types.
func (t Type) IsValid() bool {
	return t == Game || t == Publisher || t == Developer
}

// Collection returns the vector-store collection holding vectors of this type.
func (t Type) Collection() string {
	switch t {
	case Game:
		return "games"
	case Publisher:
		return "publishers"
	case Developer:
		return "developers"
	default:
		return ""
	}
}

// ParseType validates a raw entity type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// Ref identifies an entity either by id or by name. Exactly one is expected.
type Ref struct {
	ID   *int64
	Name string
}

// ByID reports whether the reference carries an id.
func (r Ref) ByID() bool { return r.ID != nil }

// Entity is a resolved catalog entity with its comparison baseline.
type Entity struct {
	ID      int64
	Name    string
	Type    Type
	Metrics Metrics
}

// Metrics carries the baseline used by relative filters. Nil means unknown, never zero.
type Metrics struct {
	TotalReviews     *int64
	ReviewPercentage *float64
	PriceCents       *int64
	GameCount        *int64
	PublisherIDs     []int64
	DeveloperIDs     []int64
}

// Merge returns m overlaid with every field known on preferred.
func (m Metrics) Merge(preferred Metrics) Metrics {
	out := m
	if preferred.TotalReviews != nil {
		out.TotalReviews = preferred.TotalReviews
	}
	if preferred.ReviewPercentage != nil {
		out.ReviewPercentage = preferred.ReviewPercentage
	}
	if preferred.PriceCents != nil {
		out.PriceCents = preferred.PriceCents
	}
	if preferred.GameCount != nil {
		out.GameCount = preferred.GameCount
	}
	if len(preferred.PublisherIDs) > 0 {
		out.PublisherIDs = preferred.PublisherIDs
	}
	if len(preferred.DeveloperIDs) > 0 {
		out.DeveloperIDs = preferred.DeveloperIDs
	}
	return out
}
