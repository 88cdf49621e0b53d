package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned when sending on a closed session.
	ErrSessionClosed = errors.New("bridge: session closed")

	// ErrServerClosed is returned by ListenAndServe after Shutdown.
	ErrServerClosed = errors.New("bridge: server closed")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string
	Err       error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	return fmt.Sprintf("bridge: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}
