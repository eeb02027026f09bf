// Package service implements the request-facing operations internal/api
// handles dispatch to: account lifecycle, profile editing, media upload
// bookkeeping, moderation-admin review, and news. Grounded structurally on
// the teacher's pkg/services (one thin struct per concern wrapping the
// shared data-access surface, sentinel errors mapped to HTTP status at the
// API boundary rather than inline per-handler).
package service

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, mapped to HTTP status by internal/api/errors.go.
// Named and scoped per spec.md §7's status table (401/403/404/406/409/
// 429/500), generalizing the teacher's narrower four-sentinel set
// (pkg/services/errors.go: ErrNotFound/ErrAlreadyExists/ErrInvalidInput/
// ErrConcurrentModification).
var (
	// ErrUnauthorized means the caller's credentials are missing or stale.
	ErrUnauthorized = errors.New("service: unauthorized")

	// ErrForbidden means the caller is authenticated but not permitted.
	ErrForbidden = errors.New("service: forbidden")

	// ErrNotFound means the referenced entity does not exist, or does not
	// belong to the caller.
	ErrNotFound = errors.New("service: not found")

	// ErrConflict means the request collides with the entity's current
	// state (the teacher's ErrAlreadyExists/ErrConcurrentModification
	// collapsed into one kind; both map to HTTP 409).
	ErrConflict = errors.New("service: conflict")

	// ErrValidation means the request body failed field-level validation.
	// Prefer NewValidationError for caller-facing detail.
	ErrValidation = errors.New("service: invalid input")

	// ErrStateNotAcceptable means the entity exists but is not in a state
	// that accepts this operation (e.g. editing a banned account's
	// profile) — spec.md §7's 406.
	ErrStateNotAcceptable = errors.New("service: state not acceptable")

	// ErrRateLimited means the caller exceeded a request budget.
	ErrRateLimited = errors.New("service: rate limited")

	// ErrProviderTransient means an upstream dependency (LLM, push
	// provider) failed in a way worth retrying.
	ErrProviderTransient = errors.New("service: upstream transient failure")

	// ErrProviderPermanent means an upstream dependency failed in a way
	// retrying will not fix.
	ErrProviderPermanent = errors.New("service: upstream permanent failure")
)

// ValidationError wraps field-specific validation detail, grounded on the
// teacher's pkg/services.ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) succeed for a *ValidationError.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError constructs a field-level validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
