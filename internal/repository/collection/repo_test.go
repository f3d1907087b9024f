package collection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/gamesim/internal/db"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
)

func TestEnsure_CreatesMissingIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	st, err := repo.Ensure(context.Background(), entity.Game)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Created || !st.Exists || st.Index != "gamesim:games:idx" {
		t.Errorf("unexpected status: %+v", st)
	}
	if len(ms.created) != 1 {
		t.Fatalf("expected 1 FT.CREATE, got %d", len(ms.created))
	}
	def := ms.created[0]
	if def.StorageType != db.StorageJSON {
		t.Errorf("expected JSON storage, got %s", def.StorageType)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "gamesim:games:" {
		t.Errorf("unexpected prefixes: %v", def.Prefixes)
	}
}

func TestEnsure_ExistingIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return true, nil }

	st, err := repo.Ensure(context.Background(), entity.Publisher)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Created || !st.Exists {
		t.Errorf("unexpected status: %+v", st)
	}
	if len(ms.created) != 0 {
		t.Error("existing index must not be recreated")
	}
}

func TestEnsure_RaceOnCreate(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

	st, err := repo.Ensure(context.Background(), entity.Developer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Created || !st.Exists {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestEnsureAll_StopsAtFirstFailure(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		if strings.Contains(def.Name, "publishers") {
			return errors.New("boom")
		}
		return nil
	}

	out, err := repo.EnsureAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(out) != 1 || out[0].Type != entity.Game {
		t.Errorf("unexpected statuses: %+v", out)
	}
}

func TestCheck(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		return name == "gamesim:games:idx", nil
	}

	out, err := repo.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 || !out[0].Exists || out[1].Exists || out[2].Exists {
		t.Errorf("unexpected statuses: %+v", out)
	}
	if len(ms.created) != 0 {
		t.Error("Check must not create indexes")
	}
}

func TestDrop_MissingIndexIsNoop(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.dropIndexFn = func(context.Context, string) error { return db.ErrIndexNotFound }

	if err := repo.Drop(context.Background(), entity.Game); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildIndex_GameSchema(t *testing.T) {
	def, err := buildIndex("gamesim:", entity.Game, testVectorConfig(), HNSWConfig{M: 16, EFConstruct: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := def.String()
	for _, want := range []string{
		"FT.CREATE gamesim:games:idx ON JSON PREFIX gamesim:games:",
		"$.id AS id NUMERIC",
		"$.genres[*] AS genres TAG",
		"$.platforms[*] AS platforms TAG",
		"$.is_delisted AS is_delisted TAG",
		"$.total_reviews AS total_reviews NUMERIC",
		"$.__vector AS vector VECTOR HNSW",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("schema %q missing %q", s, want)
		}
	}

	vec := def.Fields[len(def.Fields)-1]
	if vec.VectorDim != 8 || vec.VectorDistance != db.DistanceCosine || vec.VectorM != 16 {
		t.Errorf("unexpected vector field: %+v", vec)
	}
}

func TestBuildIndex_CompanySchema(t *testing.T) {
	def, err := buildIndex("", entity.Developer, testVectorConfig(), HNSWConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := def.String()
	if !strings.Contains(s, "$.top_tags[*] AS top_tags TAG") || !strings.Contains(s, "$.is_major AS is_major TAG") {
		t.Errorf("unexpected schema: %s", s)
	}
	if strings.Contains(s, "genres[*] AS genres") {
		t.Error("company schema must not carry game attributes")
	}
}

func TestBuildIndex_Flat(t *testing.T) {
	vc := testVectorConfig()
	vc.Algorithm = "FLAT"

	def, err := buildIndex("", entity.Game, vc, HNSWConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if algo := def.Fields[len(def.Fields)-1].VectorAlgo; algo != db.VectorFlat {
		t.Errorf("expected FLAT, got %s", algo)
	}
}

func TestBuildIndex_Invalid(t *testing.T) {
	vc := testVectorConfig()
	vc.DistanceMetric = "manhattan"
	if _, err := buildIndex("", entity.Game, vc, HNSWConfig{}); err == nil {
		t.Error("expected error for unknown metric")
	}

	for _, metric := range []string{"l2", "IP"} {
		vc = testVectorConfig()
		vc.DistanceMetric = metric
		if _, err := buildIndex("", entity.Game, vc, HNSWConfig{}); err == nil {
			t.Errorf("expected error for non-cosine metric %q", metric)
		}
	}

	vc = testVectorConfig()
	vc.Dimensions = 0
	if _, err := buildIndex("", entity.Game, vc, HNSWConfig{}); err == nil {
		t.Error("expected error for zero dimensions")
	}

	if _, err := buildIndex("", entity.Type("franchise"), testVectorConfig(), HNSWConfig{}); err == nil {
		t.Error("expected error for unknown type")
	}
}
