package client

import (
	"errors"
	"fmt"
)

// ErrEmptyCollegeName rejects a submission whose college name is empty after
// trimming. No network call is made when this is returned.
var ErrEmptyCollegeName = errors.New("college name is required")

// ErrAlreadyTerminal marks a cancellation that raced a completion: the engine
// had already finalized the audit. Callers treat it as a benign no-op, never
// a user-visible failure.
var ErrAlreadyTerminal = errors.New("audit already in a terminal state")

// TransportError wraps a network or HTTP-level failure against the engine.
type TransportError struct {
	Op     string // logical operation: start, status, cancel, list
	URL    string
	Status int // HTTP status, 0 when the request never completed
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("engine %s %s: HTTP %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("engine %s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a TransportError.
// Parameters:
//   - err: any error.
// Returns:
//   - bool: true when a *TransportError is in the chain.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
