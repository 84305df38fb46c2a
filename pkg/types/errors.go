package types

import "fmt"

// ValidationError rejects a malformed Query before any backend call.
// It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

// Is implements errors.Is support so callers can match on the kind
// without holding the exact value.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a validation error naming the offending field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// BackendUnavailableError reports that a backend could not serve a
// query: connection failure, deadline expiry, or a malformed response.
// It is distinguishable from a legitimate zero-hit result by type.
type BackendUnavailableError struct {
	Backend string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// Is implements errors.Is support for BackendUnavailableError.
func (e *BackendUnavailableError) Is(target error) bool {
	t, ok := target.(*BackendUnavailableError)
	if !ok {
		return false
	}
	return t.Backend == "" || t.Backend == e.Backend
}

// NewBackendUnavailableError wraps a backend failure with the backend name.
func NewBackendUnavailableError(backend string, err error) *BackendUnavailableError {
	return &BackendUnavailableError{Backend: backend, Err: err}
}

// EmbeddingError reports a provider failure while vectorizing query
// text. For reconciliation purposes it counts as a vector-backend
// failure, but the kind is kept distinct so callers can tell an
// embedding outage from a store outage.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is implements errors.Is support for EmbeddingError.
func (e *EmbeddingError) Is(target error) bool {
	_, ok := target.(*EmbeddingError)
	return ok
}
