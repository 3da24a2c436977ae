package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrCredentialsIncorrect covers wrong sign-in credentials and any missing,
	// invalid, expired or malformed token. Callers cannot tell the cases apart.
	ErrCredentialsIncorrect = errors.New("credentials incorrect")
	// ErrCredentialsTaken is returned when email or username is already registered.
	ErrCredentialsTaken = errors.New("credentials taken")
	// ErrAccessDenied is returned when an authenticated caller lacks a role or ownership.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound is returned when a referenced resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrWorkerFailure is returned when the hash pool fails a specific task.
	ErrWorkerFailure = errors.New("hash worker failure")
	// ErrConfigFatal marks configuration that must stop the process at startup.
	ErrConfigFatal = errors.New("fatal configuration error")
)

// Codes exposed in ErrorResponse.Code.
const (
	CodeCredentialsIncorrect = "CREDENTIALS_INCORRECT"
	CodeCredentialsTaken     = "CREDENTIALS_TAKEN"
	CodeAccessDenied         = "ACCESS_DENIED"
	CodeNotFound             = "NOT_FOUND"
	CodeWorkerFailure        = "WORKER_FAILURE"
	CodeInternal             = "INTERNAL_ERROR"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeValidation           = "VALIDATION_ERROR"
)

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

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped causes are matched
// but never copied into the message.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrCredentialsIncorrect):
		return NewHTTPError(http.StatusUnauthorized, ErrCredentialsIncorrect.Error(), CodeCredentialsIncorrect)
	case errors.Is(err, ErrCredentialsTaken):
		return NewHTTPError(http.StatusForbidden, ErrCredentialsTaken.Error(), CodeCredentialsTaken)
	case errors.Is(err, ErrAccessDenied):
		return NewHTTPError(http.StatusForbidden, ErrAccessDenied.Error(), CodeAccessDenied)
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), CodeNotFound)
	case errors.Is(err, ErrWorkerFailure):
		return NewHTTPError(http.StatusInternalServerError, "internal server error", CodeWorkerFailure)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", CodeInternal)
	}
}
