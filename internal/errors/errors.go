package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is the parent of every client-correctable input error.
	ErrValidation = errors.New("validation failed")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a session token fails verification.
	ErrInvalidToken = errors.New("token is not valid or has expired")
	// ErrUserNotFound is returned when a user id has no row.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything outside the
// taxonomy becomes a generic 500 so internals never leak to clients.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return NewHTTPError(http.StatusBadRequest, verr.Message, "VALIDATION_FAILED")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, ErrEmailTaken.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
