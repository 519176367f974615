package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while running the loop.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Event is the name of the event involved, if any.
	Event string

	// Seq is the logical time of the event involved, if any.
	Seq int64
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeEventPanic indicates an event closure panicked.
	ErrCodeEventPanic RuntimeErrorCode = "EVENT_PANIC"

	// ErrCodeStopped indicates the loop no longer accepts events.
	ErrCodeStopped RuntimeErrorCode = "ENGINE_STOPPED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("%s: %s (event=%s, seq=%d)", e.Code, e.Message, e.Event, e.Seq)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPanicError returns true if the error is a recovered event panic.
// Uses errors.As to handle wrapped errors.
func IsPanicError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeEventPanic
	}
	return false
}

// IsStoppedError returns true if the engine refused work because it stopped.
func IsStoppedError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStopped
	}
	return false
}

// NewPanicError wraps a recovered panic value.
func NewPanicError(ev Event, seq int64, recovered any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeEventPanic,
		Message: fmt.Sprintf("event panicked: %v", recovered),
		Event:   ev.Name,
		Seq:     seq,
	}
}

// ErrStopped is returned by Do once the engine has stopped.
var ErrStopped = &RuntimeError{Code: ErrCodeStopped, Message: "engine is not accepting events"}
