package sso

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestRegistryRegisterAndValidity(t *testing.T) {
	r := NewRegistry(3, 100, time.Hour, zap.NewNop())

	require.NoError(t, r.Register("sid-1", "a@example.com"))
	assert.True(t, r.IsValid("sid-1"))
	assert.False(t, r.IsValid("sid-unknown"))
}

func TestRegistryPerPrincipalCap(t *testing.T) {
	r := NewRegistry(2, 100, time.Hour, zap.NewNop())

	require.NoError(t, r.Register("s1", "a@example.com"))
	require.NoError(t, r.Register("s2", "a@example.com"))

	err := r.Register("s3", "a@example.com")
	require.Error(t, err)

	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CapacityPerPrincipal, ce.Scope)
	assert.Equal(t, 2, ce.Limit)
	assert.Contains(t, ce.Message(), "simultaneous sessions (2)")

	// Another principal is unaffected.
	require.NoError(t, r.Register("s4", "b@example.com"))
}

func TestRegistryGlobalCapCheckedFirst(t *testing.T) {
	r := NewRegistry(1, 2, time.Hour, zap.NewNop())

	require.NoError(t, r.Register("s1", "a@example.com"))
	require.NoError(t, r.Register("s2", "b@example.com"))

	// c@ would also pass its per-principal cap; global must win.
	err := r.Register("s3", "c@example.com")
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CapacityGlobal, ce.Scope)
	assert.Contains(t, ce.Message(), "active sessions (2)")
}

func TestRegistryExpiryAndTouch(t *testing.T) {
	r := NewRegistry(3, 100, time.Hour, zap.NewNop())
	now, clock := testClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	r.now = clock

	require.NoError(t, r.Register("s1", "a@example.com"))
	require.NoError(t, r.Register("s2", "a@example.com"))

	// Keep s1 alive past the TTL of s2.
	*now = now.Add(40 * time.Minute)
	r.Touch("s1")

	*now = now.Add(30 * time.Minute)
	assert.True(t, r.IsValid("s1"))
	assert.False(t, r.IsValid("s2"))

	// Expiry frees capacity for new registrations.
	st := r.Stats()
	assert.Equal(t, 1, st.TotalSessions)
}

func TestRegistryExpiredSlotsFreeCapacity(t *testing.T) {
	r := NewRegistry(1, 100, time.Hour, zap.NewNop())
	now, clock := testClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	r.now = clock

	require.NoError(t, r.Register("s1", "a@example.com"))
	require.Error(t, r.Register("s2", "a@example.com"))

	*now = now.Add(2 * time.Hour)
	require.NoError(t, r.Register("s2", "a@example.com"))
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := NewRegistry(3, 100, time.Hour, zap.NewNop())

	require.NoError(t, r.Register("s1", "a@example.com"))
	r.Remove("s1")
	r.Remove("s1")
	assert.False(t, r.IsValid("s1"))
}

func TestRegistryTouchUnknownIsNoop(t *testing.T) {
	r := NewRegistry(3, 100, time.Hour, zap.NewNop())
	r.Touch("never-registered")
	assert.Equal(t, 0, r.Stats().TotalSessions)
}

func TestRegistryStatsSnapshot(t *testing.T) {
	r := NewRegistry(3, 100, time.Hour, zap.NewNop())

	require.NoError(t, r.Register("s1", "a@example.com"))
	require.NoError(t, r.Register("s2", "a@example.com"))
	require.NoError(t, r.Register("s3", "b@example.com"))

	st := r.Stats()
	assert.Equal(t, 3, st.TotalSessions)
	assert.Equal(t, 100, st.MaxGlobal)
	assert.Equal(t, 3, st.MaxPerPrincipal)
	assert.Equal(t, map[string]int{"a@example.com": 2, "b@example.com": 1}, st.ByPrincipal)
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry(100, 1000, time.Hour, zap.NewNop())

	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			_ = r.Register(fmt.Sprintf("s-%d", i), "a@example.com")
			r.Touch(fmt.Sprintf("s-%d", i))
			_ = r.IsValid(fmt.Sprintf("s-%d", i))
		}(i)
	}
	for i := 0; i < 50; i++ {
		<-done
	}
	assert.Equal(t, 50, r.Stats().TotalSessions)
}
