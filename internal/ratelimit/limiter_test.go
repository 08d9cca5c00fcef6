package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmitWithinLimit(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(2, time.Minute, func() time.Time { return now })

	first := l.Admit(1)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second := l.Admit(1)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)
}

func TestAdmitDeniesOverLimit(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(2, time.Minute, func() time.Time { return now })

	l.Admit(1)
	l.Admit(1)

	denied := l.Admit(1)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 0, denied.Remaining)
	assert.Equal(t, time.Minute, denied.ResetAfter)
}

func TestWindowSlides(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(2, time.Minute, func() time.Time { return now })

	l.Admit(1)
	now = now.Add(30 * time.Second)
	l.Admit(1)

	now = now.Add(31 * time.Second)
	// First event fell out of the window, one slot is free again.
	decision := l.Admit(1)
	assert.True(t, decision.Allowed)

	denied := l.Admit(1)
	assert.False(t, denied.Allowed)
}

func TestDeniedEventNotRecorded(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(1, time.Minute, func() time.Time { return now })

	l.Admit(1)
	l.Admit(1)
	l.Admit(1)

	now = now.Add(61 * time.Second)
	assert.True(t, l.Admit(1).Allowed)
}

func TestUsersIsolated(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(1, time.Minute, func() time.Time { return now })

	l.Admit(1)
	assert.False(t, l.Admit(1).Allowed)
	assert.True(t, l.Admit(2).Allowed)
}

func TestRemainingDoesNotConsume(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(3, time.Minute, func() time.Time { return now })

	assert.Equal(t, 3, l.Remaining(1))
	assert.Equal(t, 3, l.Remaining(1))

	l.Admit(1)
	assert.Equal(t, 2, l.Remaining(1))
}

func TestReset(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(1, time.Minute, func() time.Time { return now })

	l.Admit(1)
	assert.False(t, l.Admit(1).Allowed)

	l.Reset(1)
	assert.True(t, l.Admit(1).Allowed)
}

func TestSweepDropsIdleUsers(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(2, time.Minute, func() time.Time { return now })

	l.Admit(1)
	l.Admit(2)
	assert.Len(t, l.events, 2)

	now = now.Add(2 * time.Minute)
	l.sweep()

	assert.Empty(t, l.events)
}
