package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunPendingIsFIFO(t *testing.T) {
	s := NewScheduler()
	var got []int
	s.Post(func() { got = append(got, 1) })
	s.Post(func() {
		got = append(got, 2)
		s.Post(func() { got = append(got, 3) })
	})

	assert.Equal(t, 3, s.RunPending())
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_WaitForPostsFromGoroutine(t *testing.T) {
	s := NewScheduler()
	go s.Post(func() {})
	assert.True(t, s.WaitForPosts(1, 2*time.Second))
	assert.False(t, s.WaitForPosts(2, 10*time.Millisecond))
}

func TestScheduler_AdvanceFiresInDeadlineOrder(t *testing.T) {
	s := NewScheduler()
	var got []string
	s.AfterFunc(300*time.Millisecond, func() { got = append(got, "late") })
	s.AfterFunc(100*time.Millisecond, func() { got = append(got, "early") })

	assert.Equal(t, 1, s.Advance(200*time.Millisecond))
	assert.Equal(t, []string{"early"}, got)
	assert.Equal(t, 1, s.Advance(200*time.Millisecond))
	assert.Equal(t, []string{"early", "late"}, got)
	assert.Equal(t, 400*time.Millisecond, s.Now())
}

func TestScheduler_StopPreventsFiring(t *testing.T) {
	s := NewScheduler()
	fired := false
	timer := s.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Equal(t, 0, s.FireAll())
	assert.False(t, fired)
	assert.Equal(t, 0, s.LiveTimers())
}

func TestScheduler_LeakyStopStillFires(t *testing.T) {
	s := NewScheduler()
	s.LeakyStop = true
	fired := false
	timer := s.AfterFunc(time.Second, func() { fired = true })

	assert.False(t, timer.Stop())
	assert.Equal(t, 1, s.FireAll())
	assert.True(t, fired)
}

func TestScheduler_TimerScheduledFromCallback(t *testing.T) {
	s := NewScheduler()
	var got []string
	s.AfterFunc(10*time.Millisecond, func() {
		got = append(got, "first")
		s.AfterFunc(10*time.Millisecond, func() { got = append(got, "second") })
	})

	assert.Equal(t, 2, s.FireAll())
	assert.Equal(t, []string{"first", "second"}, got)
}
