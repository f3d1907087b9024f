package catalog

import (
	"fmt"

	"github.com/kailas-cloud/gamesim/internal/domain/entity"
)

type lookup int

const (
	byID lookup = iota
	byExactName
	byFragment
)

const gameColumns = `t.id, t.name, t.total_reviews, t.review_percentage, t.price_cents,
	COALESCE((SELECT array_agg(gp.publisher_id ORDER BY gp.publisher_id)
		FROM game_publishers gp WHERE gp.game_id = t.id), '{}'),
	COALESCE((SELECT array_agg(gd.developer_id ORDER BY gd.developer_id)
		FROM game_developers gd WHERE gd.game_id = t.id), '{}')`

const companyColumns = `t.id, t.name,
	(SELECT count(*) FROM %s j WHERE j.%s = t.id)`

// lookupSQL renders the single-row lookup of an entity of type t.
func lookupSQL(t entity.Type, by lookup) (string, error) {
	var cols string
	switch t {
	case entity.Game:
		cols = gameColumns
	case entity.Publisher:
		cols = fmt.Sprintf(companyColumns, "game_publishers", "publisher_id")
	case entity.Developer:
		cols = fmt.Sprintf(companyColumns, "game_developers", "developer_id")
	default:
		return "", fmt.Errorf("unknown entity type %q", t)
	}

	var where string
	switch by {
	case byID:
		where = "t.id = $1"
	case byExactName:
		where = "lower(t.name) = lower($1)"
	case byFragment:
		where = `regexp_replace(lower(t.name), '[^[:alnum:]]', '', 'g') LIKE '%' || $1 || '%'`
	default:
		return "", fmt.Errorf("unknown lookup %d", by)
	}

	return fmt.Sprintf("SELECT %s\nFROM %s t\nWHERE %s\nORDER BY t.id\nLIMIT 1", cols, t.Collection(), where), nil
}
