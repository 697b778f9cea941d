package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glossahub/glossahub-backend/internal/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { database.RedisClient = nil })
	return mr
}

func TestCreateSessionStartsWithZeroAttempts(t *testing.T) {
	newTestRedis(t)

	userID := uuid.New()
	token, err := CreateSession(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	attempts, err := AuthAttempts(token)
	require.NoError(t, err)
	assert.Equal(t, 0, attempts)

	gotID, ok, err := ValidateSession(token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)
}

func TestAuthAttemptsIncrementAndReset(t *testing.T) {
	newTestRedis(t)

	token, err := CreateSession(uuid.New())
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		n, err := IncrementAuthAttempts(token)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	require.NoError(t, ResetAuthAttempts(token))
	attempts, err := AuthAttempts(token)
	require.NoError(t, err)
	assert.Equal(t, 0, attempts)
}

func TestAnonymousSessionValidatesAsNil(t *testing.T) {
	newTestRedis(t)

	token, err := CreateAnonymousSession()
	require.NoError(t, err)

	userID, ok, err := ValidateSession(token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uuid.Nil, userID)
}

func TestBindSession(t *testing.T) {
	newTestRedis(t)

	token, err := CreateAnonymousSession()
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, BindSession(token, userID))

	gotID, ok, err := ValidateSession(token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)

	assert.ErrorIs(t, BindSession("no-such-token", userID), ErrSessionNotFound)
}

func TestSessionFlags(t *testing.T) {
	newTestRedis(t)

	token, err := CreateAnonymousSession()
	require.NoError(t, err)

	assert.False(t, SessionFlag(token, FlagPasswordReset))

	require.NoError(t, SetSessionFlag(token, FlagPasswordReset))
	assert.True(t, SessionFlag(token, FlagPasswordReset))

	require.NoError(t, ClearSessionFlag(token, FlagPasswordReset))
	assert.False(t, SessionFlag(token, FlagPasswordReset))
}

func TestRotateCSRFToken(t *testing.T) {
	newTestRedis(t)

	token, err := CreateSession(uuid.New())
	require.NoError(t, err)

	before, err := CSRFToken(token)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	rotated, err := RotateCSRFToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, before, rotated)

	after, err := CSRFToken(token)
	require.NoError(t, err)
	assert.Equal(t, rotated, after)
}

func TestCycleSessionKeyKeepsFields(t *testing.T) {
	newTestRedis(t)

	userID := uuid.New()
	token, err := CreateSession(userID)
	require.NoError(t, err)

	_, err = IncrementAuthAttempts(token)
	require.NoError(t, err)
	require.NoError(t, SetSessionFlag(token, FlagShowSetPassword))

	newToken, err := CycleSessionKey(token)
	require.NoError(t, err)
	require.NotEqual(t, token, newToken)

	// Old token is gone, new token carries the same fields
	_, ok, _ := ValidateSession(token)
	assert.False(t, ok)

	gotID, ok, err := ValidateSession(newToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)

	attempts, err := AuthAttempts(newToken)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, SessionFlag(newToken, FlagShowSetPassword))
}

func TestInvalidateOtherSessionsKeepsCurrent(t *testing.T) {
	newTestRedis(t)

	userID := uuid.New()
	keep, err := CreateSession(userID)
	require.NoError(t, err)
	other1, err := CreateSession(userID)
	require.NoError(t, err)
	other2, err := CreateSession(userID)
	require.NoError(t, err)

	require.NoError(t, InvalidateOtherSessions(userID, keep))

	_, ok, _ := ValidateSession(keep)
	assert.True(t, ok)
	_, ok, _ = ValidateSession(other1)
	assert.False(t, ok)
	_, ok, _ = ValidateSession(other2)
	assert.False(t, ok)
}

func TestInvalidateUserSessions(t *testing.T) {
	newTestRedis(t)

	userID := uuid.New()
	t1, err := CreateSession(userID)
	require.NoError(t, err)
	t2, err := CreateSession(userID)
	require.NoError(t, err)

	require.NoError(t, InvalidateUserSessions(userID))

	_, ok, _ := ValidateSession(t1)
	assert.False(t, ok)
	_, ok, _ = ValidateSession(t2)
	assert.False(t, ok)
}
