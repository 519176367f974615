package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	err := NewPanicError(Event{Name: "timer"}, 7, "boom")
	assert.Equal(t, "EVENT_PANIC: event panicked: boom (event=timer, seq=7)", err.Error())
	assert.True(t, IsPanicError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsStoppedError(err))

	assert.True(t, IsStoppedError(ErrStopped))
	assert.Equal(t, "ENGINE_STOPPED: engine is not accepting events", ErrStopped.Error())
}
