package collection

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/gamesim/internal/db"
	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/search/criteria"
	"github.com/kailas-cloud/gamesim/internal/repository/vectors"
)

// schemaField is one filterable attribute of a collection.
type schemaField struct {
	name  string
	array bool
	typ   db.IndexFieldType
}

var gameSchema = []schemaField{
	{name: criteria.FieldID, typ: db.IndexFieldNumeric},
	{name: criteria.FieldGenres, array: true, typ: db.IndexFieldTag},
	{name: criteria.FieldTags, array: true, typ: db.IndexFieldTag},
	{name: criteria.FieldPlatforms, array: true, typ: db.IndexFieldTag},
	{name: criteria.FieldSteamDeck, typ: db.IndexFieldTag},
	{name: criteria.FieldIsFree, typ: db.IndexFieldTag},
	{name: criteria.FieldIsDelisted, typ: db.IndexFieldTag},
	{name: criteria.FieldIsReleased, typ: db.IndexFieldTag},
	{name: criteria.FieldPriceCents, typ: db.IndexFieldNumeric},
	{name: criteria.FieldTotalReviews, typ: db.IndexFieldNumeric},
	{name: criteria.FieldReviewPercentage, typ: db.IndexFieldNumeric},
	{name: criteria.FieldReleaseYear, typ: db.IndexFieldNumeric},
}

var companySchema = []schemaField{
	{name: criteria.FieldID, typ: db.IndexFieldNumeric},
	{name: criteria.FieldGameCount, typ: db.IndexFieldNumeric},
	{name: criteria.FieldAvgReviewPercentage, typ: db.IndexFieldNumeric},
	{name: criteria.FieldIsMajor, typ: db.IndexFieldTag},
	{name: criteria.FieldTopGenres, array: true, typ: db.IndexFieldTag},
	{name: criteria.FieldTopTags, array: true, typ: db.IndexFieldTag},
}

// buildIndex creates the JSON index definition of collection t. Every
// filterable attribute is aliased to its plain name so filters can address it.
func buildIndex(prefix string, t entity.Type, vc domain.VectorConfig, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown entity type %q", t)
	}
	if vc.Dimensions <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", vc.Dimensions)
	}
	distance, err := distanceMetric(vc.DistanceMetric)
	if err != nil {
		return nil, err
	}

	schema := companySchema
	if t == entity.Game {
		schema = gameSchema
	}

	b := db.NewIndex(indexName(prefix, t)).OnJSON().Prefix(vectors.CollectionPrefix(prefix, t))
	for _, f := range schema {
		path := "$." + f.name
		if f.array {
			path += "[*]"
		}
		switch f.typ {
		case db.IndexFieldNumeric:
			b.Numeric(path).As(f.name)
		default:
			b.Tag(path).As(f.name)
		}
	}

	vecPath := "$." + vectors.VectorField
	if strings.EqualFold(vc.Algorithm, "flat") {
		b.VectorFlat(vecPath, vc.Dimensions, distance, 0).As("vector")
	} else {
		b.VectorHNSW(vecPath, vc.Dimensions, distance, hnsw.M, hnsw.EFConstruct).As("vector")
	}
	return b.Build()
}

// distanceMetric accepts cosine only: search converts hit scores as cosine distances.
func distanceMetric(name string) (db.DistanceMetric, error) {
	switch strings.ToLower(name) {
	case "", "cosine":
		return db.DistanceCosine, nil
	default:
		return "", fmt.Errorf("unsupported distance metric %q, only cosine is supported", name)
	}
}

func indexName(prefix string, t entity.Type) string {
	return vectors.IndexName(prefix, t)
}
