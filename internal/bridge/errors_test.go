package bridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		code  ErrorCode
	}{
		{"fetch", NewFetchError(cause), IsFetchError, ErrCodeFetchFailed},
		{"stream", NewStreamError(cause), IsStreamError, ErrCodeStreamFailed},
		{"send", NewSendError("u1", cause), IsSendError, ErrCodeSendFailed},
		{"invariant", NewInvariantViolation("commit", "no current record"), IsInvariantViolation, ErrCodeInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.code, CodeOf(tt.err))

			wrapped := fmt.Errorf("controller: %w", tt.err)
			assert.True(t, tt.check(wrapped), "helpers must see through wrapping")
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := NewSendError("u7", cause)

	assert.Equal(t, "SEND_FAILED: send (record=u7): timeout", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf_ForeignError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.False(t, IsFetchError(nil))
}

func TestAsHelpers_KeepExistingCode(t *testing.T) {
	original := NewStreamError(errors.New("bad payload"))

	assert.True(t, IsStreamError(AsFetch(original)), "already-coded errors pass through")
	assert.True(t, IsFetchError(AsFetch(errors.New("x"))))
	assert.True(t, IsSendError(AsSend("u1", errors.New("x"))))
	assert.True(t, IsStreamError(AsStream(errors.New("x"))))
	assert.NoError(t, AsFetch(nil))
}
