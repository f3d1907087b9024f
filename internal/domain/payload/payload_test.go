package payload

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/gamesim/internal/domain/entity"
)

func TestDecode_Game(t *testing.T) {
	doc := `{"id":730,"name":"Counter-Strike 2","genres":["Action","FPS"],
		"franchise_ids":[5],"franchise_names":["Counter-Strike"],
		"review_percentage":87.5,"total_reviews":8000000,"price_cents":0,
		"is_free":"true","is_delisted":false,"is_released":"true","steam_deck":"verified"}`

	p, err := Decode(entity.Game, []byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, ok := p.(*Game)
	if !ok {
		t.Fatalf("payload type = %T, want *Game", p)
	}
	if g.ID != 730 || g.Name != "Counter-Strike 2" {
		t.Errorf("id/name = %d/%q", g.ID, g.Name)
	}
	if !bool(g.IsFree) || !bool(g.IsReleased) || bool(g.IsDelisted) {
		t.Errorf("flags = free:%v released:%v delisted:%v", g.IsFree, g.IsReleased, g.IsDelisted)
	}
	if g.TotalReviews == nil || *g.TotalReviews != 8000000 {
		t.Errorf("TotalReviews = %v", g.TotalReviews)
	}
	if g.PriceCents == nil || *g.PriceCents != 0 {
		t.Error("PriceCents = 0 must be known, not nil")
	}
	m := g.Metrics()
	if m.ReviewPercentage == nil || *m.ReviewPercentage != 87.5 {
		t.Errorf("Metrics().ReviewPercentage = %v", m.ReviewPercentage)
	}
}

func TestDecode_Company(t *testing.T) {
	doc := `{"id":12,"name":"Valve","game_count":40,"top_genres":["Action"],"is_major":"true"}`

	p, err := Decode(entity.Publisher, []byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := p.(*Company)
	if !ok {
		t.Fatalf("payload type = %T, want *Company", p)
	}
	if c.EntityType() != entity.Publisher {
		t.Errorf("EntityType() = %q", c.EntityType())
	}
	if !bool(c.IsMajor) {
		t.Error("IsMajor = false")
	}
	if m := c.Metrics(); m.GameCount == nil || *m.GameCount != 40 {
		t.Errorf("Metrics().GameCount = %v", m.GameCount)
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	_, err := Decode(entity.Developer, []byte(`{"id":1,"name":"X","type":"publisher"}`))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		typ  entity.Type
		doc  string
	}{
		{"missing id", entity.Game, `{"name":"X"}`},
		{"review out of range", entity.Game, `{"id":1,"review_percentage":120}`},
		{"negative reviews", entity.Game, `{"id":1,"total_reviews":-1}`},
		{"negative game count", entity.Developer, `{"id":1,"game_count":-3}`},
		{"bad flag", entity.Game, `{"id":1,"is_free":"maybe"}`},
		{"not json", entity.Game, `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.typ, []byte(tt.doc)); !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestFromFields(t *testing.T) {
	fields := map[string]string{
		"id":              "620",
		"name":            "1942",
		"genres":          `["Puzzle","Platformer"]`,
		"franchise_ids":   "[3]",
		"franchise_names": `["Portal"]`,
		"total_reviews":   "150000",
		"is_free":         "false",
		"steam_deck":      "verified",
	}

	p, err := FromFields(entity.Game, fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := p.(*Game)
	if g.Name != "1942" {
		t.Errorf("Name = %q, numeric-looking names must stay strings", g.Name)
	}
	if len(g.Genres) != 2 || g.Genres[1] != "Platformer" {
		t.Errorf("Genres = %v", g.Genres)
	}
	if g.SteamDeck != "verified" {
		t.Errorf("SteamDeck = %q", g.SteamDeck)
	}
	if g.TotalReviews == nil || *g.TotalReviews != 150000 {
		t.Errorf("TotalReviews = %v", g.TotalReviews)
	}
}

func TestFromFields_QuotedStrings(t *testing.T) {
	p, err := FromFields(entity.Developer, map[string]string{"id": "9", "name": `"Supergiant"`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if NameOf(p) != "Supergiant" {
		t.Errorf("NameOf = %q", NameOf(p))
	}
}

func TestFlag_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		F Flag `json:"f"`
	}{F: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"f":"true"}` {
		t.Errorf("json = %s", raw)
	}
}

func TestFields(t *testing.T) {
	if got := Fields(entity.Game); len(got) != len(gameFields) {
		t.Errorf("Fields(game) len = %d", len(got))
	}
	if got := Fields(entity.Publisher); got[len(got)-1] != "is_major" {
		t.Errorf("Fields(publisher) = %v", got)
	}
}
