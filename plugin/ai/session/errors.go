package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTurn is wrapped by StoreError when a turn fails validation.
var ErrInvalidTurn = errors.New("invalid turn")

// StoreError reports a failed session store operation.
type StoreError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *StoreError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("session store %s (session %s): %v", e.Op, e.SessionID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is or wraps a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func validate(op, sessionID string, turn *Turn) error {
	switch {
	case sessionID == "":
		return &StoreError{Op: op, Err: fmt.Errorf("%w: session id is required", ErrInvalidTurn)}
	case turn == nil:
		return &StoreError{Op: op, SessionID: sessionID, Err: fmt.Errorf("%w: nil turn", ErrInvalidTurn)}
	case turn.Role != RoleUser && turn.Role != RoleAssistant:
		return &StoreError{Op: op, SessionID: sessionID, Err: fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, turn.Role)}
	case turn.Content == "":
		return &StoreError{Op: op, SessionID: sessionID, Err: fmt.Errorf("%w: content is required", ErrInvalidTurn)}
	}
	return nil
}
