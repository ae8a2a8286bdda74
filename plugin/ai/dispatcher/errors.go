package dispatcher

import (
	"errors"
	"fmt"
)

// UnknownModelError reports a model id that is not configured. It is a caller error.
type UnknownModelError struct {
	ModelID string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q", e.ModelID)
}

// BackendUnavailableError reports a failed model call: timeout, transport
// failure, non-success status or an empty/malformed response.
type BackendUnavailableError struct {
	ModelID ModelID
	Backend BackendKind
	// StatusCode is the HTTP status when the backend answered, otherwise 0.
	StatusCode int
	Cause      error
}

func (e *BackendUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend unavailable for model %s (status %d): %v", e.Backend, e.ModelID, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s backend unavailable for model %s: %v", e.Backend, e.ModelID, e.Cause)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Cause
}

// IsUnknownModel reports whether err is or wraps an UnknownModelError.
func IsUnknownModel(err error) bool {
	var target *UnknownModelError
	return errors.As(err, &target)
}

// IsBackendUnavailable reports whether err is or wraps a BackendUnavailableError.
func IsBackendUnavailable(err error) bool {
	var target *BackendUnavailableError
	return errors.As(err, &target)
}
