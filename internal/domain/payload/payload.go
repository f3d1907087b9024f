// Package payload defines the typed attribute records stored next to each vector.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/gamesim/internal/domain/entity"
)

// ErrInvalid is returned when a stored payload fails validation.
var ErrInvalid = errors.New("invalid payload")

// Payload is one of *Game or *Company.
type Payload interface {
	EntityType() entity.Type
	Metrics() entity.Metrics
	Validate() error
}

// Point is a stored embedding with its payload.
type Point struct {
	Vector  []float32
	Payload Payload
}

// Flag is a boolean stored as a TAG value ("true"/"false") in the vector store.
type Flag bool

// MarshalJSON writes the flag as a tag string.
func (f Flag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatBool(bool(f)))), nil
}

// UnmarshalJSON accepts both JSON booleans and "true"/"false" strings.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*f = false
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("flag %q: %w", data, err)
	}
	*f = Flag(v)
	return nil
}

// Game is the payload of a point in the games collection.
type Game struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Genres           []string `json:"genres,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	FranchiseIDs     []int64  `json:"franchise_ids,omitempty"`
	FranchiseNames   []string `json:"franchise_names,omitempty"`
	DeveloperIDs     []int64  `json:"developer_ids,omitempty"`
	PublisherIDs     []int64  `json:"publisher_ids,omitempty"`
	ReviewPercentage *float64 `json:"review_percentage,omitempty"`
	TotalReviews     *int64   `json:"total_reviews,omitempty"`
	PriceCents       *int64   `json:"price_cents,omitempty"`
	IsFree           Flag     `json:"is_free"`
	ReleaseYear      *int     `json:"release_year,omitempty"`
	Platforms        []string `json:"platforms,omitempty"`
	SteamDeck        string   `json:"steam_deck,omitempty"`
	IsDelisted       Flag     `json:"is_delisted"`
	IsReleased       Flag     `json:"is_released"`
}

// EntityType implements Payload.
func (*Game) EntityType() entity.Type { return entity.Game }

// Metrics returns the comparison baseline carried by the payload.
func (g *Game) Metrics() entity.Metrics {
	return entity.Metrics{
		TotalReviews:     g.TotalReviews,
		ReviewPercentage: g.ReviewPercentage,
		PriceCents:       g.PriceCents,
		PublisherIDs:     g.PublisherIDs,
		DeveloperIDs:     g.DeveloperIDs,
	}
}

// Validate checks value ranges.
func (g *Game) Validate() error {
	if g.ID <= 0 {
		return fmt.Errorf("%w: game id must be positive", ErrInvalid)
	}
	if g.ReviewPercentage != nil && (*g.ReviewPercentage < 0 || *g.ReviewPercentage > 100) {
		return fmt.Errorf("%w: review_percentage %v out of [0,100]", ErrInvalid, *g.ReviewPercentage)
	}
	if g.TotalReviews != nil && *g.TotalReviews < 0 {
		return fmt.Errorf("%w: negative total_reviews", ErrInvalid)
	}
	if g.PriceCents != nil && *g.PriceCents < 0 {
		return fmt.Errorf("%w: negative price_cents", ErrInvalid)
	}
	return nil
}

// Company is the payload of a point in the publishers or developers collection.
type Company struct {
	Kind                entity.Type `json:"-"`
	ID                  int64       `json:"id"`
	Name                string      `json:"name"`
	GameCount           *int64      `json:"game_count,omitempty"`
	TopGenres           []string    `json:"top_genres,omitempty"`
	TopTags             []string    `json:"top_tags,omitempty"`
	AvgReviewPercentage *float64    `json:"avg_review_percentage,omitempty"`
	IsMajor             Flag        `json:"is_major"`
}

// EntityType implements Payload.
func (c *Company) EntityType() entity.Type { return c.Kind }

// Metrics returns the comparison baseline carried by the payload.
func (c *Company) Metrics() entity.Metrics {
	return entity.Metrics{
		GameCount:        c.GameCount,
		ReviewPercentage: c.AvgReviewPercentage,
	}
}

// Validate checks the kind and value ranges.
func (c *Company) Validate() error {
	if c.Kind != entity.Publisher && c.Kind != entity.Developer {
		return fmt.Errorf("%w: company payload with type %q", ErrInvalid, c.Kind)
	}
	if c.ID <= 0 {
		return fmt.Errorf("%w: %s id must be positive", ErrInvalid, c.Kind)
	}
	if c.GameCount != nil && *c.GameCount < 0 {
		return fmt.Errorf("%w: negative game_count", ErrInvalid)
	}
	if c.AvgReviewPercentage != nil && (*c.AvgReviewPercentage < 0 || *c.AvgReviewPercentage > 100) {
		return fmt.Errorf("%w: avg_review_percentage %v out of [0,100]", ErrInvalid, *c.AvgReviewPercentage)
	}
	return nil
}

// NameOf returns the display name of a payload, or "" for nil.
func NameOf(p Payload) string {
	switch v := p.(type) {
	case *Game:
		return v.Name
	case *Company:
		return v.Name
	default:
		return ""
	}
}

var (
	gameFields = []string{
		"id", "name", "genres", "tags", "franchise_ids", "franchise_names",
		"developer_ids", "publisher_ids", "review_percentage", "total_reviews",
		"price_cents", "is_free", "release_year", "platforms", "steam_deck",
		"is_delisted", "is_released",
	}
	companyFields = []string{
		"id", "name", "game_count", "top_genres", "top_tags",
		"avg_review_percentage", "is_major",
	}
	// stringFields are always decoded as JSON strings even when they look numeric.
	stringFields = map[string]bool{"name": true, "steam_deck": true}
)

// Fields lists the payload attributes of the given type.
func Fields(t entity.Type) []string {
	if t == entity.Game {
		return append([]string(nil), gameFields...)
	}
	return append([]string(nil), companyFields...)
}

// Decode parses a JSON document into the payload variant for t and validates it.
// A document whose "type" attribute names another entity type is rejected.
func Decode(t entity.Type, data []byte) (Payload, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if head.Type != "" && entity.Type(head.Type) != t {
		return nil, fmt.Errorf("%w: payload type %q in %s collection", ErrInvalid, head.Type, t.Collection())
	}

	var p Payload
	switch t {
	case entity.Game:
		p = &Game{}
	case entity.Publisher, entity.Developer:
		p = &Company{Kind: t}
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", ErrInvalid, t)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// FromFields assembles a payload from search RETURN values keyed by attribute
// name. Values are raw JSON when they parse as JSON, otherwise plain strings.
func FromFields(t entity.Type, fields map[string]string) (Payload, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for k, v := range fields {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(fieldValue(k, v))
	}
	buf.WriteByte('}')
	return Decode(t, buf.Bytes())
}

func fieldValue(key, v string) []byte {
	if stringFields[key] && !isQuoted(v) {
		return []byte(strconv.Quote(v))
	}
	if v != "" && json.Valid([]byte(v)) {
		return []byte(v)
	}
	return []byte(strconv.Quote(v))
}

func isQuoted(v string) bool {
	return len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"'
}
