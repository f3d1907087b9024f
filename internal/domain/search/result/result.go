// Package result holds vector-store candidates and the ranked results returned to callers.
package result

import (
	"math"

	"github.com/kailas-cloud/gamesim/internal/domain/payload"
)

// Display truncation limits.
const (
	MaxDisplayGenres = 3
	MaxDisplayTags   = 5
)

// Candidate is a single nearest-neighbor hit. RawScore is a similarity in [0,1].
type Candidate struct {
	ID       int64
	RawScore float64
	Payload  payload.Payload
}

// Ranked is a result as returned by the similarity tools.
type Ranked struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Score        int      `json:"score"`
	RawScore     *int     `json:"raw_score,omitempty"`
	MatchReasons []string `json:"match_reasons,omitempty"`

	Genres           []string `json:"genres,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	ReviewPercentage *float64 `json:"review_percentage,omitempty"`
	TotalReviews     *int64   `json:"total_reviews,omitempty"`
	PriceCents       *int64   `json:"price_cents,omitempty"`
	IsFree           *bool    `json:"is_free,omitempty"`
	ReleaseYear      *int     `json:"release_year,omitempty"`
	SteamDeck        string   `json:"steam_deck,omitempty"`

	GameCount           *int64   `json:"game_count,omitempty"`
	TopGenres           []string `json:"top_genres,omitempty"`
	TopTags             []string `json:"top_tags,omitempty"`
	AvgReviewPercentage *float64 `json:"avg_review_percentage,omitempty"`
	IsMajor             *bool    `json:"is_major,omitempty"`
}

// Percent converts a [0,1] score to an integer percentage.
func Percent(score float64) int {
	return int(math.Round(math.Max(0, math.Min(score, 1)) * 100))
}

// Unboosted maps a candidate whose score is its raw similarity.
func Unboosted(c Candidate) Ranked {
	r := fromPayload(c.ID, c.Payload)
	r.Score = Percent(c.RawScore)
	return r
}

// Boosted maps a re-ranked candidate, keeping the raw score for explainability.
func Boosted(c Candidate, score float64, reasons []string) Ranked {
	r := fromPayload(c.ID, c.Payload)
	r.Score = Percent(score)
	raw := Percent(c.RawScore)
	r.RawScore = &raw
	if len(reasons) > 0 {
		r.MatchReasons = reasons
	}
	return r
}

func fromPayload(id int64, p payload.Payload) Ranked {
	r := Ranked{ID: id, Name: payload.NameOf(p)}
	switch v := p.(type) {
	case *payload.Game:
		free := bool(v.IsFree)
		r.Genres = head(v.Genres, MaxDisplayGenres)
		r.Tags = head(v.Tags, MaxDisplayTags)
		r.ReviewPercentage = v.ReviewPercentage
		r.TotalReviews = v.TotalReviews
		r.PriceCents = v.PriceCents
		r.IsFree = &free
		r.ReleaseYear = v.ReleaseYear
		r.SteamDeck = v.SteamDeck
	case *payload.Company:
		major := bool(v.IsMajor)
		r.GameCount = v.GameCount
		r.TopGenres = head(v.TopGenres, MaxDisplayGenres)
		r.TopTags = head(v.TopTags, MaxDisplayTags)
		r.AvgReviewPercentage = v.AvgReviewPercentage
		r.IsMajor = &major
	}
	return r
}

func head(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n:n]
}
