package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable error kind returned by the HTTP API.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeUnknownModel indicates a model id outside the registry.
	ErrCodeUnknownModel ErrorCode = "UNKNOWN_MODEL"
	// ErrCodeNotFound indicates the requested resource does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a uniqueness violation, e.g. a taken username.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeServiceUnavailable indicates the service is not available.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal is everything else.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// APIError is a structured error with a code mapped to an HTTP status.
type APIError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status for the error code.
func (e *APIError) Status() int {
	return HTTPStatus(e.Code)
}

// HTTPStatus maps an error code to an HTTP status code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidArgument, ErrCodeUnknownModel:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Convenience constructors for common error types.

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *APIError {
	return &APIError{Code: ErrCodeUnauthorized, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// UnknownModel creates an unknown model error.
func UnknownModel(cause error) *APIError {
	return &APIError{Code: ErrCodeUnknownModel, Message: "unknown model", Cause: cause}
}

// NotFound creates a not found error.
func NotFound(msg string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: msg}
}

// Conflict creates a conflict error.
func Conflict(msg string) *APIError {
	return &APIError{Code: ErrCodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string, cause error) *APIError {
	return &APIError{Code: ErrCodeInternal, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *APIError {
	return &APIError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an APIError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return defaultCode
}
