// Package resolve turns an id or a free-form name into a catalog entity.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/logger"
)

// Service resolves entity references.
type Service struct {
	catalog Catalog
}

// New creates a resolver.
func New(c Catalog) *Service {
	return &Service{catalog: c}
}

// Resolve looks up ref. An id is matched exactly with no name fallback. A
// name is matched case-insensitively first, then as a fragment of the folded
// name, where the first match by id wins. Failures other than "no match"
// wrap domain.ErrLookupFailed.
func (s *Service) Resolve(ctx context.Context, t entity.Type, ref entity.Ref) (*entity.Entity, error) {
	if !t.IsValid() {
		return nil, domain.Validationf("entity_type must be one of game, publisher, developer, got %q", t)
	}

	if ref.ByID() {
		e, err := s.catalog.ByID(ctx, t, *ref.ID)
		if err != nil {
			return nil, s.lookupErr(ctx, err, &domain.NotFoundError{EntityType: string(t), ID: *ref.ID})
		}
		return e, nil
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil, domain.Validationf("either reference_id or reference_name is required")
	}
	notFound := &domain.NotFoundError{EntityType: string(t), Name: name, ByName: true}

	e, err := s.catalog.ByExactName(ctx, t, name)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, s.lookupErr(ctx, err, notFound)
	}

	fragment := Fold(name)
	if fragment == "" {
		return nil, notFound
	}
	e, err = s.catalog.ByFoldedFragment(ctx, t, fragment)
	if err != nil {
		return nil, s.lookupErr(ctx, err, notFound)
	}

	logger.FromContext(ctx).Debug("Resolved reference by name fragment",
		zap.String("entity_type", string(t)),
		zap.String("query", name),
		zap.Int64("id", e.ID),
		zap.String("name", e.Name),
	)
	return e, nil
}

func (s *Service) lookupErr(ctx context.Context, err error, notFound *domain.NotFoundError) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return notFound
	case domain.IsCanceled(err) || ctx.Err() != nil:
		return domain.Canceled(err)
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrLookupFailed, notFound.EntityType, err)
	}
}

// Fold lowercases s rune by rune and keeps only letters and digits, so
// "Counter-Strike" and "counterstrike" compare equal. It mirrors the SQL
// lower() used on the catalog side: "ß" stays "ß".
func Fold(s string) string {
	folded := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
