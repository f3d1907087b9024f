// Package criteria compiles user-facing search filters into vector-store predicates.
package criteria

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/search/filter"
)

// Relative comparison values.
const (
	MorePopular    = "more_popular"
	LessPopular    = "less_popular"
	BetterReviewed = "better_reviewed"
	WorseReviewed  = "worse_reviewed"
	Similar        = "similar"
)

// Band half-width for review_comparison=similar, in percentage points.
const reviewSimilarBand = 5

// Indexed attribute names.
const (
	FieldID                  = "id"
	FieldIsDelisted          = "is_delisted"
	FieldIsReleased          = "is_released"
	FieldPriceCents          = "price_cents"
	FieldIsFree              = "is_free"
	FieldPlatforms           = "platforms"
	FieldSteamDeck           = "steam_deck"
	FieldGenres              = "genres"
	FieldTags                = "tags"
	FieldTotalReviews        = "total_reviews"
	FieldReviewPercentage    = "review_percentage"
	FieldReleaseYear         = "release_year"
	FieldGameCount           = "game_count"
	FieldAvgReviewPercentage = "avg_review_percentage"
	FieldIsMajor             = "is_major"
	FieldTopGenres           = "top_genres"
	FieldTopTags             = "top_tags"
)

// IntRange is an inclusive integer range; either bound may be omitted.
type IntRange struct {
	GTE *int64 `json:"gte,omitempty"`
	LTE *int64 `json:"lte,omitempty"`
}

// FloatRange is an inclusive float range; either bound may be omitted.
type FloatRange struct {
	GTE *float64 `json:"gte,omitempty" validate:"omitempty,gte=0,lte=100"`
	LTE *float64 `json:"lte,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Spec is the filter set accepted by the similarity tools.
type Spec struct {
	PopularityComparison string      `json:"popularity_comparison,omitempty" validate:"omitempty,oneof=more_popular less_popular similar"`
	ReviewComparison     string      `json:"review_comparison,omitempty" validate:"omitempty,oneof=better_reviewed worse_reviewed similar"`
	MaxPriceCents        *int64      `json:"max_price_cents,omitempty" validate:"omitempty,gte=0"`
	IsFree               *bool       `json:"is_free,omitempty"`
	Platforms            []string    `json:"platforms,omitempty" validate:"omitempty,dive,oneof=windows mac linux"`
	SteamDeck            []string    `json:"steam_deck,omitempty" validate:"omitempty,dive,oneof=verified playable unsupported unknown"`
	Genres               []string    `json:"genres,omitempty"`
	Tags                 []string    `json:"tags,omitempty"`
	MinReviews           *int64      `json:"min_reviews,omitempty" validate:"omitempty,gte=0"`
	ReleaseYear          *IntRange   `json:"release_year,omitempty"`
	ExcludeDelisted      *bool       `json:"exclude_delisted,omitempty"`
	IsReleased           *bool       `json:"is_released,omitempty"`
	GameCount            *IntRange   `json:"game_count,omitempty"`
	AvgReviewPercentage  *FloatRange `json:"avg_review_percentage,omitempty"`
	IsMajor              *bool       `json:"is_major,omitempty"`
	IsIndie              *bool       `json:"is_indie,omitempty"`
	TopGenres            []string    `json:"top_genres,omitempty"`
	TopTags              []string    `json:"top_tags,omitempty"`
}

// HasRelative reports whether a comparison against a reference entity is requested.
func (s *Spec) HasRelative() bool {
	return s != nil && (s.PopularityComparison != "" || s.ReviewComparison != "")
}

// Normalized returns a copy of s with platform and Steam Deck values trimmed
// and lowercased, ready for validation against their vocabularies.
func (s *Spec) Normalized() *Spec {
	if s == nil {
		return nil
	}
	out := *s
	out.Platforms = lower(clean(s.Platforms))
	out.SteamDeck = lower(clean(s.SteamDeck))
	return &out
}

// Build compiles spec into a pre-filter for collection type t. When source is
// non-nil its id is always excluded and its metrics anchor relative comparisons.
func Build(t entity.Type, spec *Spec, source *entity.Entity) (filter.Expression, error) {
	spec = spec.Normalized()
	if spec == nil {
		spec = &Spec{}
	}

	b := &builder{}
	if source != nil {
		id := float64(source.ID)
		b.mustNotRange(FieldID, nil, &id, nil, &id)
	}

	var err error
	switch t {
	case entity.Game:
		err = buildGame(b, spec, source)
	case entity.Publisher, entity.Developer:
		err = buildCompany(b, t, spec)
	default:
		err = domain.Validationf("unsupported entity type %q", t)
	}
	if err != nil {
		return filter.Expression{}, err
	}
	if b.err != nil {
		return filter.Expression{}, domain.Validationf("%s", b.err)
	}

	expr, err := filter.NewExpression(b.must, nil, b.mustNot)
	if err != nil {
		return filter.Expression{}, domain.Validationf("%s", err)
	}
	return expr, nil
}

func buildGame(b *builder, s *Spec, source *entity.Entity) error {
	if s.ExcludeDelisted == nil || *s.ExcludeDelisted {
		b.mustNotMatch(FieldIsDelisted, "true")
	}
	if s.IsReleased == nil {
		b.match(FieldIsReleased, "true")
	} else {
		b.match(FieldIsReleased, strconv.FormatBool(*s.IsReleased))
	}

	if s.MaxPriceCents != nil {
		if *s.MaxPriceCents < 0 {
			return domain.Validationf("max_price_cents must not be negative")
		}
		v := float64(*s.MaxPriceCents)
		b.rng(FieldPriceCents, nil, nil, nil, &v)
	}
	if s.IsFree != nil {
		b.match(FieldIsFree, strconv.FormatBool(*s.IsFree))
	}
	for _, p := range s.Platforms {
		b.match(FieldPlatforms, p)
	}
	b.anyOf(FieldSteamDeck, s.SteamDeck)
	b.anyOf(FieldGenres, clean(s.Genres))
	b.anyOf(FieldTags, clean(s.Tags))
	if s.MinReviews != nil {
		if *s.MinReviews < 0 {
			return domain.Validationf("min_reviews must not be negative")
		}
		v := float64(*s.MinReviews)
		b.rng(FieldTotalReviews, nil, &v, nil, nil)
	}
	if err := b.intRange(FieldReleaseYear, "release_year", s.ReleaseYear); err != nil {
		return err
	}

	if err := popularity(b, s.PopularityComparison, source); err != nil {
		return err
	}
	return reviews(b, s.ReviewComparison, source)
}

func popularity(b *builder, cmp string, source *entity.Entity) error {
	if cmp == "" {
		return nil
	}
	if cmp != MorePopular && cmp != LessPopular && cmp != Similar {
		return domain.Validationf("unknown popularity_comparison %q", cmp)
	}
	if source == nil {
		return domain.Validationf("popularity_comparison requires a reference game")
	}
	if source.Metrics.TotalReviews == nil {
		return &domain.ComparisonUnavailableError{
			Filter: "popularity_comparison",
			Metric: "total review count",
			Name:   source.Name,
		}
	}

	n := float64(*source.Metrics.TotalReviews)
	switch cmp {
	case MorePopular:
		b.rng(FieldTotalReviews, &n, nil, nil, nil)
	case LessPopular:
		b.rng(FieldTotalReviews, nil, nil, &n, nil)
	default:
		lo, hi := n/2, n*2
		b.rng(FieldTotalReviews, nil, &lo, nil, &hi)
	}
	return nil
}

func reviews(b *builder, cmp string, source *entity.Entity) error {
	if cmp == "" {
		return nil
	}
	if cmp != BetterReviewed && cmp != WorseReviewed && cmp != Similar {
		return domain.Validationf("unknown review_comparison %q", cmp)
	}
	if source == nil {
		return domain.Validationf("review_comparison requires a reference game")
	}
	if source.Metrics.ReviewPercentage == nil {
		return &domain.ComparisonUnavailableError{
			Filter: "review_comparison",
			Metric: "review percentage",
			Name:   source.Name,
		}
	}

	p := *source.Metrics.ReviewPercentage
	switch cmp {
	case BetterReviewed:
		b.rng(FieldReviewPercentage, &p, nil, nil, nil)
	case WorseReviewed:
		b.rng(FieldReviewPercentage, nil, nil, &p, nil)
	default:
		lo, hi := p-reviewSimilarBand, p+reviewSimilarBand
		b.rng(FieldReviewPercentage, nil, &lo, nil, &hi)
	}
	return nil
}

func buildCompany(b *builder, t entity.Type, s *Spec) error {
	if s.HasRelative() {
		return domain.Validationf("relative comparisons are only supported for games, not %ss", t)
	}
	if err := b.intRange(FieldGameCount, "game_count", s.GameCount); err != nil {
		return err
	}
	if r := s.AvgReviewPercentage; r != nil {
		if r.GTE != nil && r.LTE != nil && *r.GTE > *r.LTE {
			return domain.Validationf("avg_review_percentage: gte %v is greater than lte %v", *r.GTE, *r.LTE)
		}
		if r.GTE != nil || r.LTE != nil {
			b.rng(FieldAvgReviewPercentage, nil, r.GTE, nil, r.LTE)
		}
	}

	major := s.IsMajor
	if s.IsIndie != nil {
		notIndie := !*s.IsIndie
		if major != nil && *major != notIndie {
			return domain.Validationf("is_major and is_indie contradict each other")
		}
		major = &notIndie
	}
	if major != nil {
		b.match(FieldIsMajor, strconv.FormatBool(*major))
	}

	b.anyOf(FieldTopGenres, clean(s.TopGenres))
	b.anyOf(FieldTopTags, clean(s.TopTags))
	return nil
}

// builder collects conditions and keeps the first construction error.
type builder struct {
	must    []filter.Condition
	mustNot []filter.Condition
	err     error
}

func (b *builder) keep(c filter.Condition, err error, into *[]filter.Condition) {
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	*into = append(*into, c)
}

func (b *builder) match(key, value string) {
	c, err := filter.NewMatch(key, value)
	b.keep(c, err, &b.must)
}

func (b *builder) mustNotMatch(key, value string) {
	c, err := filter.NewMatch(key, value)
	b.keep(c, err, &b.mustNot)
}

func (b *builder) anyOf(key string, values []string) {
	if len(values) == 0 {
		return
	}
	c, err := filter.NewMatchAny(key, values)
	b.keep(c, err, &b.must)
}

func (b *builder) rng(key string, gt, gte, lt, lte *float64) {
	r, err := filter.NewRangeFilter(gt, gte, lt, lte)
	if err != nil {
		b.keep(filter.Condition{}, err, &b.must)
		return
	}
	c, err := filter.NewRange(key, r)
	b.keep(c, err, &b.must)
}

func (b *builder) mustNotRange(key string, gt, gte, lt, lte *float64) {
	r, err := filter.NewRangeFilter(gt, gte, lt, lte)
	if err != nil {
		b.keep(filter.Condition{}, err, &b.mustNot)
		return
	}
	c, err := filter.NewRange(key, r)
	b.keep(c, err, &b.mustNot)
}

func (b *builder) intRange(key, name string, r *IntRange) error {
	if r == nil || (r.GTE == nil && r.LTE == nil) {
		return nil
	}
	if r.GTE != nil && r.LTE != nil && *r.GTE > *r.LTE {
		return domain.Validationf("%s: gte %d is greater than lte %d", name, *r.GTE, *r.LTE)
	}
	var gte, lte *float64
	if r.GTE != nil {
		v := float64(*r.GTE)
		gte = &v
	}
	if r.LTE != nil {
		v := float64(*r.LTE)
		lte = &v
	}
	b.rng(key, nil, gte, nil, lte)
	return nil
}

// clean trims values and drops empty ones.
func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// lower lowercases values in place.
func lower(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}
