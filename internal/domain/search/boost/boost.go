// Package boost re-ranks game candidates by shared franchise, studio, genres and tags.
package boost

import (
	"sort"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/gamesim/internal/domain/payload"
	"github.com/kailas-cloud/gamesim/internal/domain/search/result"
)

// Signal names a boost contribution.
type Signal string

// Boost signals.
const (
	SignalFranchise Signal = "franchise"
	SignalDeveloper Signal = "developer"
	SignalPublisher Signal = "publisher"
	SignalGenre     Signal = "genre"
	SignalTag       Signal = "tag"
)

// Reasons used when no specific name is available.
const (
	ReasonSameSeries    = "Same series"
	ReasonSameDeveloper = "Same developer"
	ReasonSamePublisher = "Same publisher"
)

// Weights are the per-signal boost amounts on the [0,1] similarity scale.
type Weights struct {
	Franchise float64
	Developer float64
	Publisher float64
	PerGenre  float64
	MaxGenres int
	PerTag    float64
	MaxTags   int
	Cap       float64
}

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{
		Franchise: 0.15,
		Developer: 0.08,
		Publisher: 0.03,
		PerGenre:  0.02,
		MaxGenres: 3,
		PerTag:    0.01,
		MaxTags:   5,
		Cap:       0.25,
	}
}

// Boosted is a candidate after re-ranking.
type Boosted struct {
	result.Candidate
	Score   float64
	Boost   float64
	Reasons []string
	Signals []Signal
}

// Boost scores every candidate against source and returns them sorted by
// boosted score, descending. Ties keep the incoming order. Candidates or
// sources lacking a field contribute nothing for that signal.
func Boost(source *payload.Game, candidates []result.Candidate, w Weights) []Boosted {
	out := make([]Boosted, len(candidates))
	s := newProfile(source)
	for i, c := range candidates {
		out[i] = s.score(c, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// profile is the source game with its sets precomputed.
type profile struct {
	game       *payload.Game
	fold       cases.Caser
	franchises map[int64]int
	developers map[int64]bool
	publishers map[int64]bool
	genres     map[string]bool
	tags       map[string]bool
}

func newProfile(g *payload.Game) *profile {
	p := &profile{game: g, fold: cases.Fold()}
	if g == nil {
		return p
	}
	p.franchises = make(map[int64]int, len(g.FranchiseIDs))
	for i, id := range g.FranchiseIDs {
		if _, ok := p.franchises[id]; !ok {
			p.franchises[id] = i
		}
	}
	p.developers = idSet(g.DeveloperIDs)
	p.publishers = idSet(g.PublisherIDs)
	p.genres = p.foldSet(g.Genres)
	p.tags = p.foldSet(g.Tags)
	return p
}

func (p *profile) score(c result.Candidate, w Weights) Boosted {
	b := Boosted{Candidate: c, Score: c.RawScore}
	g, ok := c.Payload.(*payload.Game)
	if p.game == nil || !ok || g == nil {
		return b
	}

	var total float64
	add := func(sig Signal, amount float64, reason string) {
		total += amount
		b.Signals = append(b.Signals, sig)
		if reason != "" {
			b.Reasons = append(b.Reasons, reason)
		}
	}

	if reason, ok := p.franchise(g); ok {
		add(SignalFranchise, w.Franchise, reason)
	}
	if overlaps(g.DeveloperIDs, p.developers) {
		add(SignalDeveloper, w.Developer, ReasonSameDeveloper)
	}
	if overlaps(g.PublisherIDs, p.publishers) {
		add(SignalPublisher, w.Publisher, ReasonSamePublisher)
	}

	used := make(map[string]bool)
	if n, first := p.shared(g.Genres, p.genres, w.MaxGenres, used); n > 0 {
		add(SignalGenre, float64(n)*w.PerGenre, first)
	}
	if n, first := p.shared(g.Tags, p.tags, w.MaxTags, used); n > 0 {
		add(SignalTag, float64(n)*w.PerTag, first)
	}

	b.Boost = min(total, w.Cap)
	b.Score = min(c.RawScore+b.Boost, 1.0)
	return b
}

// franchise returns the name of the first shared franchise in candidate order.
func (p *profile) franchise(g *payload.Game) (string, bool) {
	for i, id := range g.FranchiseIDs {
		j, ok := p.franchises[id]
		if !ok {
			continue
		}
		if i < len(g.FranchiseNames) && g.FranchiseNames[i] != "" {
			return g.FranchiseNames[i], true
		}
		if j < len(p.game.FranchiseNames) && p.game.FranchiseNames[j] != "" {
			return p.game.FranchiseNames[j], true
		}
		return ReasonSameSeries, true
	}
	return "", false
}

// shared counts distinct values of values present in set, up to limit. The
// reason is the first shared value not already used as a reason.
func (p *profile) shared(values []string, set map[string]bool, limit int, used map[string]bool) (int, string) {
	if len(set) == 0 {
		return 0, ""
	}
	seen := make(map[string]bool, len(values))
	n := 0
	reason := ""
	for _, v := range values {
		k := p.fold.String(v)
		if seen[k] || !set[k] {
			continue
		}
		seen[k] = true
		if n < limit {
			n++
		}
		if reason == "" && !used[k] {
			reason = v
			used[k] = true
		}
	}
	return n, reason
}

func (p *profile) foldSet(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[p.fold.String(v)] = true
	}
	return m
}

func idSet(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func overlaps(ids []int64, set map[int64]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}
