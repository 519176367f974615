package bridge

import (
	"errors"
	"fmt"
)

// ErrorCode categorises failures crossing the bridge boundary.
type ErrorCode string

const (
	// ErrCodeFetchFailed: the initial load failed. The deck stays as it was.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"

	// ErrCodeStreamFailed: a subscription batch failed to arrive or decode.
	ErrCodeStreamFailed ErrorCode = "STREAM_FAILED"

	// ErrCodeSendFailed: a decision could not be delivered. Not rolled back.
	ErrCodeSendFailed ErrorCode = "SEND_FAILED"

	// ErrCodeInvariantViolation: a mutation was attempted with no valid
	// target (e.g. committing on an exhausted deck). Reported, never raised.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
)

// Error is the structured error surfaced to error subscribers.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed (e.g. "fetch", "observe", "send", "commit").
	Op string

	// RecordID is set when the failure concerns one record.
	RecordID string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Op)
	if e.RecordID != "" {
		msg += fmt.Sprintf(" (record=%s)", e.RecordID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// NewFetchError wraps a FetchInitial failure.
func NewFetchError(err error) *Error {
	return &Error{Code: ErrCodeFetchFailed, Op: "fetch", Err: err}
}

// NewStreamError wraps a subscription failure.
func NewStreamError(err error) *Error {
	return &Error{Code: ErrCodeStreamFailed, Op: "observe", Err: err}
}

// NewSendError wraps a Send failure for recordID.
func NewSendError(recordID string, err error) *Error {
	return &Error{Code: ErrCodeSendFailed, Op: "send", RecordID: recordID, Err: err}
}

// NewInvariantViolation reports a rejected mutation.
func NewInvariantViolation(op, detail string) *Error {
	return &Error{Code: ErrCodeInvariantViolation, Op: op, Err: errors.New(detail)}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsFetchError reports whether err is a FETCH_FAILED error.
func IsFetchError(err error) bool { return CodeOf(err) == ErrCodeFetchFailed }

// IsStreamError reports whether err is a STREAM_FAILED error.
func IsStreamError(err error) bool { return CodeOf(err) == ErrCodeStreamFailed }

// IsSendError reports whether err is a SEND_FAILED error.
func IsSendError(err error) bool { return CodeOf(err) == ErrCodeSendFailed }

// IsInvariantViolation reports whether err is an INVARIANT_VIOLATION error.
func IsInvariantViolation(err error) bool { return CodeOf(err) == ErrCodeInvariantViolation }

// AsFetch wraps err as a fetch error unless it already carries a code.
func AsFetch(err error) error {
	if err == nil || CodeOf(err) != "" {
		return err
	}
	return NewFetchError(err)
}

// AsStream wraps err as a stream error unless it already carries a code.
func AsStream(err error) error {
	if err == nil || CodeOf(err) != "" {
		return err
	}
	return NewStreamError(err)
}

// AsSend wraps err as a send error unless it already carries a code.
func AsSend(recordID string, err error) error {
	if err == nil || CodeOf(err) != "" {
		return err
	}
	return NewSendError(recordID, err)
}
