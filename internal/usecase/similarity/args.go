package similarity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/domain/search/criteria"
	"github.com/kailas-cloud/gamesim/internal/domain/search/request"
)

// FindSimilarArgs is the input of the find_similar tool.
type FindSimilarArgs struct {
	EntityType    string         `json:"entity_type" validate:"required,oneof=game publisher developer" jsonschema:"one of game, publisher, developer"`
	ReferenceID   *int64         `json:"reference_id,omitempty" validate:"omitempty,gt=0" jsonschema:"catalog id of the reference entity"`
	ReferenceName string         `json:"reference_name,omitempty" validate:"max=200" jsonschema:"name of the reference entity, typos tolerated"`
	Filters       *criteria.Spec `json:"filters,omitempty" jsonschema:"optional result filters"`
	Limit         int            `json:"limit,omitempty" validate:"gte=0" jsonschema:"number of results, default 10, max 50"`
}

// ConceptArgs is the input of the search_by_concept tool.
type ConceptArgs struct {
	Description string         `json:"description" validate:"max=4096" jsonschema:"free-text description of the wanted game"`
	Filters     *criteria.Spec `json:"filters,omitempty" jsonschema:"optional result filters"`
	Limit       int            `json:"limit,omitempty" validate:"gte=0" jsonschema:"number of results, default 10, max 50"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field names in errors are the JSON names.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateArgs runs struct validation and converts failures into domain.ErrValidation.
func validateArgs(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Validationf("%s", err)
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = translate(fe)
	}
	return domain.Validationf("%s", strings.Join(msgs, "; "))
}

func translate(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %v)", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// checkReference enforces that exactly one of reference_id and reference_name is set.
func (a *FindSimilarArgs) checkReference() error {
	hasName := strings.TrimSpace(a.ReferenceName) != ""
	switch {
	case a.ReferenceID == nil && !hasName:
		return domain.Validationf("either reference_id or reference_name is required")
	case a.ReferenceID != nil && hasName:
		return domain.Validationf("provide only one of reference_id or reference_name, not both")
	}
	return nil
}

// checkDescription rejects blank concept descriptions.
func (a *ConceptArgs) checkDescription() error {
	if strings.TrimSpace(a.Description) == "" {
		return domain.Validationf("description is required")
	}
	if len(strings.TrimSpace(a.Description)) > request.MaxQueryLength {
		return domain.Validationf("description too long (max %d chars)", request.MaxQueryLength)
	}
	return nil
}
