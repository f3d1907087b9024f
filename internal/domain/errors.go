package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrValidation signals malformed or missing tool arguments.
	ErrValidation = errors.New("validation error")
	// ErrNotFound signals that a reference could not be resolved to an entity.
	ErrNotFound = errors.New("not found")
	// ErrNotIndexed signals that a resolved entity has no point in the vector store.
	ErrNotIndexed = errors.New("not indexed")
	// ErrComparisonUnavailable signals a relative filter without a known baseline.
	ErrComparisonUnavailable = errors.New("comparison unavailable")
	// ErrSearchFailed signals a vector-store search failure.
	ErrSearchFailed = errors.New("vector search failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLookupFailed signals a relational store failure during resolution.
	ErrLookupFailed = errors.New("entity lookup failed")
	// ErrCanceled signals that the caller canceled the request or its deadline passed.
	ErrCanceled = errors.New("request canceled")
)

// Error codes reported in tool responses.
const (
	CodeValidation            = "validation_error"
	CodeNotFound              = "not_found"
	CodeNotIndexed            = "not_indexed"
	CodeComparisonUnavailable = "comparison_unavailable"
	CodeSearchFailed          = "search_failed"
	CodeEmbeddingFailed       = "embedding_failed"
	CodeLookupFailed          = "lookup_failed"
	CodeCanceled              = "canceled"
	CodeInternal              = "internal_error"
)

// ErrorCode maps an error chain to its response code. Cancellation wins over
// everything else because a canceled call may surface as any store error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case IsCanceled(err):
		return CodeCanceled
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNotIndexed):
		return CodeNotIndexed
	case errors.Is(err, ErrComparisonUnavailable):
		return CodeComparisonUnavailable
	case errors.Is(err, ErrSearchFailed):
		return CodeSearchFailed
	case errors.Is(err, ErrEmbeddingProviderError):
		return CodeEmbeddingFailed
	case errors.Is(err, ErrLookupFailed):
		return CodeLookupFailed
	default:
		return CodeInternal
	}
}

// IsCanceled reports whether err stems from context cancellation or deadline expiry.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Canceled wraps a context error with ErrCanceled.
func Canceled(cause error) error {
	if cause == nil {
		return ErrCanceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

// Validationf formats a validation failure.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError reports a failed id or name resolution.
type NotFoundError struct {
	EntityType string
	ID         int64
	Name       string
	ByName     bool
}

func (e *NotFoundError) Error() string {
	label := capitalize(e.EntityType)
	if e.ByName {
		return fmt.Sprintf("No %s found matching %q. Try a different spelling or a shorter part of the name.",
			e.EntityType, e.Name)
	}
	return label + " with ID " + strconv.FormatInt(e.ID, 10) + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IndexingError reports an entity that exists in the catalog but not in the vector store.
type IndexingError struct {
	EntityType string
	ID         int64
	Name       string
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("%s %q (ID %d) is not indexed for similarity search yet",
		capitalize(e.EntityType), e.Name, e.ID)
}

func (e *IndexingError) Unwrap() error { return ErrNotIndexed }

// ComparisonUnavailableError reports a relative filter whose baseline metric is unknown.
type ComparisonUnavailableError struct {
	Filter string
	Metric string
	Name   string
}

func (e *ComparisonUnavailableError) Error() string {
	return fmt.Sprintf("Cannot apply %s: %s for %q is unknown", e.Filter, e.Metric, e.Name)
}

func (e *ComparisonUnavailableError) Unwrap() error { return ErrComparisonUnavailable }

func capitalize(s string) string {
	if s == "" {
		return "Entity"
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
