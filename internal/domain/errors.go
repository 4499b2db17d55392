package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared by every layer. Wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	// ErrNotFound is returned when a specific (network, code) pair, session,
	// BIN or issuer is absent. It is distinct from a "no match" outcome.
	ErrNotFound = errors.New("not found")

	// ErrCatalogUnavailable marks a network catalog or strategy table that
	// failed to load and was degraded to empty.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrMalformedInput is returned for missing or wrong-shaped input.
	ErrMalformedInput = errors.New("malformed input")

	// ErrNotReady is returned when the catalog has not finished loading.
	ErrNotReady = errors.New("catalog not ready")

	// ErrStoreUnavailable is returned when an external store is unreachable
	// or its circuit breaker is open.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error codes for different failure scenarios
const (
	CodeNotFound           = "NOT_FOUND"
	CodeNoMatch            = "NO_MATCH"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	CodeMalformedInput     = "MALFORMED_INPUT"
	CodeNotReady           = "NOT_READY"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeAuthentication     = "AUTHENTICATION_ERROR"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// DisputeError represents a standardized error response
type DisputeError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

// Error implements the error interface
func (e *DisputeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying sentinel.
func (e *DisputeError) Unwrap() error {
	return e.Err
}

// NewDisputeError creates a new DisputeError with timestamp
func NewDisputeError(code, message, details string, err error) *DisputeError {
	return &DisputeError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Unwrap lets validation failures satisfy errors.Is(err, ErrMalformedInput).
func (e *ValidationError) Unwrap() error {
	return ErrMalformedInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// CodeOf maps an error onto its stable error code.
func CodeOf(err error) string {
	var de *DisputeError
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CodeValidation
	}

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrMalformedInput):
		return CodeMalformedInput
	case errors.Is(err, ErrNotReady):
		return CodeNotReady
	case errors.Is(err, ErrCatalogUnavailable):
		return CodeCatalogUnavailable
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}
