package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes returned in API responses
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeLocked       = "LOCKED"
	ErrCodeConflict     = "CONFLICT"
	ErrCodePersistence  = "PERSISTENCE_ERROR"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Error taxonomy. Services wrap these with context; callers match with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrLocked       = errors.New("entry is locked and cannot be modified")
	ErrConflict     = errors.New("resource already exists")
	ErrPersistence  = errors.New("persistence failure")

	ErrChallengeNotFound   = fmt.Errorf("challenge %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)
	ErrEntryNotFound       = fmt.Errorf("entry %w", ErrNotFound)
	ErrJoinRequestNotFound = fmt.Errorf("join request %w", ErrNotFound)
	ErrInvalidToken        = fmt.Errorf("invalid or expired token: %w", ErrUnauthorized)
)

// AppError is an error with a stable code and HTTP status attached
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ToHTTPError converts to the API response envelope
func (e *AppError) ToHTTPError() *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     e.Message,
		Code:      e.Code,
		Timestamp: time.Now(),
	}
}

// NewAppError classifies err against the taxonomy
func NewAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	code, status := classify(err)
	return &AppError{
		Code:       code,
		Message:    err.Error(),
		StatusCode: status,
		Err:        err,
	}
}

// StatusFor returns the HTTP status matching err
func StatusFor(err error) int {
	_, status := classify(err)
	return status
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrCodeValidation, http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound, http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return ErrCodeUnauthorized, http.StatusForbidden
	case errors.Is(err, ErrLocked):
		return ErrCodeLocked, http.StatusConflict
	case errors.Is(err, ErrConflict):
		return ErrCodeConflict, http.StatusConflict
	case errors.Is(err, ErrPersistence):
		return ErrCodePersistence, http.StatusInternalServerError
	default:
		return ErrCodeInternal, http.StatusInternalServerError
	}
}

// ValidationError builds a validation failure for one field
func ValidationError(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, fmt.Sprintf(format, args...))
}

// PersistenceError wraps a storage failure with the operation that failed
func PersistenceError(operation string, err error) error {
	return fmt.Errorf("%w during %s: %w", ErrPersistence, operation, err)
}
