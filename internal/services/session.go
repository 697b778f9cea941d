package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/glossahub/glossahub-backend/internal/database"
	"github.com/google/uuid"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for session hashes
	SessionKeyPrefix = "session:"
	// UserSessionsKeyPrefix is the Redis key prefix for the set of a user's
	// live session tokens
	UserSessionsKeyPrefix = "user_sessions:"
)

// Session flags stored in the session hash. Values are "1" when set.
const (
	FlagRegistrationEmailSent = "registration_email_sent"
	FlagPasswordReset         = "password_reset"
	FlagShowSetPassword       = "show_set_password"
)

var ErrSessionNotFound = errors.New("session not found")

func sessionKey(token string) string {
	return SessionKeyPrefix + token
}

func userSessionsKey(userID uuid.UUID) string {
	return UserSessionsKeyPrefix + userID.String()
}

func newSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// CreateSession creates a new session hash for a user. Unlike a plain
// key/value session, the hash also carries the per-session password attempt
// counter and workflow flags, and a CSRF token for state-changing forms.
func CreateSession(userID uuid.UUID) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	csrf, err := newSessionToken()
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	key := sessionKey(token)

	err = database.RedisClient.HSet(ctx, key, map[string]interface{}{
		"user_id":       userID.String(),
		"auth_attempts": 0,
		"csrf_token":    csrf,
		"created_at":    time.Now().Unix(),
	}).Err()
	if err != nil {
		return "", err
	}
	if err := database.RedisClient.Expire(ctx, key, SessionDuration).Err(); err != nil {
		return "", err
	}

	if userID != uuid.Nil {
		if err := database.RedisClient.SAdd(ctx, userSessionsKey(userID), token).Err(); err != nil {
			return "", err
		}
		database.RedisClient.Expire(ctx, userSessionsKey(userID), SessionDuration)
	}

	return token, nil
}

// CreateAnonymousSession creates a session not bound to any user, used by the
// registration and password reset flows before login.
func CreateAnonymousSession() (string, error) {
	return CreateSession(uuid.Nil)
}

// ValidateSession checks if a session token is valid and returns the user ID.
// Anonymous sessions validate with uuid.Nil.
func ValidateSession(sessionToken string) (uuid.UUID, bool, error) {
	if sessionToken == "" {
		return uuid.Nil, false, nil
	}

	ctx := context.Background()
	userIDStr, err := database.RedisClient.HGet(ctx, sessionKey(sessionToken), "user_id").Result()
	if err != nil {
		return uuid.Nil, false, nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, err
	}

	return userID, true, nil
}

// BindSession attaches a user to an existing (anonymous) session.
func BindSession(sessionToken string, userID uuid.UUID) error {
	ctx := context.Background()
	key := sessionKey(sessionToken)
	exists, err := database.RedisClient.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrSessionNotFound
	}
	if err := database.RedisClient.HSet(ctx, key, "user_id", userID.String()).Err(); err != nil {
		return err
	}
	if err := database.RedisClient.SAdd(ctx, userSessionsKey(userID), sessionToken).Err(); err != nil {
		return err
	}
	database.RedisClient.Expire(ctx, userSessionsKey(userID), SessionDuration)
	return nil
}

// AuthAttempts returns the per-session password attempt counter.
func AuthAttempts(sessionToken string) (int, error) {
	ctx := context.Background()
	n, err := database.RedisClient.HGet(ctx, sessionKey(sessionToken), "auth_attempts").Int()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// IncrementAuthAttempts bumps the per-session password attempt counter.
func IncrementAuthAttempts(sessionToken string) (int, error) {
	ctx := context.Background()
	n, err := database.RedisClient.HIncrBy(ctx, sessionKey(sessionToken), "auth_attempts", 1).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ResetAuthAttempts zeroes the per-session password attempt counter.
func ResetAuthAttempts(sessionToken string) error {
	ctx := context.Background()
	return database.RedisClient.HSet(ctx, sessionKey(sessionToken), "auth_attempts", 0).Err()
}

// CSRFToken returns the session's current CSRF token.
func CSRFToken(sessionToken string) (string, error) {
	ctx := context.Background()
	return database.RedisClient.HGet(ctx, sessionKey(sessionToken), "csrf_token").Result()
}

// RotateCSRFToken replaces the session's CSRF token. Called after a failed
// password verification so a captured form cannot be replayed.
func RotateCSRFToken(sessionToken string) (string, error) {
	csrf, err := newSessionToken()
	if err != nil {
		return "", err
	}
	ctx := context.Background()
	if err := database.RedisClient.HSet(ctx, sessionKey(sessionToken), "csrf_token", csrf).Err(); err != nil {
		return "", err
	}
	return csrf, nil
}

// SetSessionFlag sets a workflow flag on the session.
func SetSessionFlag(sessionToken, flag string) error {
	ctx := context.Background()
	return database.RedisClient.HSet(ctx, sessionKey(sessionToken), flag, "1").Err()
}

// SessionFlag reports whether a workflow flag is set.
func SessionFlag(sessionToken, flag string) bool {
	ctx := context.Background()
	v, err := database.RedisClient.HGet(ctx, sessionKey(sessionToken), flag).Result()
	return err == nil && v == "1"
}

// ClearSessionFlag removes a workflow flag from the session.
func ClearSessionFlag(sessionToken, flag string) error {
	ctx := context.Background()
	return database.RedisClient.HDel(ctx, sessionKey(sessionToken), flag).Err()
}

// SetSessionValue stores an arbitrary field on the session hash, used for
// transient workflow state like the registration captcha answer.
func SetSessionValue(sessionToken, field, value string) error {
	ctx := context.Background()
	return database.RedisClient.HSet(ctx, sessionKey(sessionToken), field, value).Err()
}

// SessionValue reads a session hash field, "" when absent.
func SessionValue(sessionToken, field string) (string, error) {
	ctx := context.Background()
	v, err := database.RedisClient.HGet(ctx, sessionKey(sessionToken), field).Result()
	if err != nil {
		return "", nil
	}
	return v, nil
}

// CycleSessionKey moves the session hash to a fresh token, keeping all fields
// (counters, flags). Used after a password change to prevent session fixation.
func CycleSessionKey(sessionToken string) (string, error) {
	newToken, err := newSessionToken()
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	oldKey := sessionKey(sessionToken)

	if err := database.RedisClient.Rename(ctx, oldKey, sessionKey(newToken)).Err(); err != nil {
		return "", fmt.Errorf("cycle session key: %w", err)
	}
	database.RedisClient.Expire(ctx, sessionKey(newToken), SessionDuration)

	userIDStr, err := database.RedisClient.HGet(ctx, sessionKey(newToken), "user_id").Result()
	if err == nil {
		if userID, perr := uuid.Parse(userIDStr); perr == nil && userID != uuid.Nil {
			database.RedisClient.SRem(ctx, userSessionsKey(userID), sessionToken)
			database.RedisClient.SAdd(ctx, userSessionsKey(userID), newToken)
		}
	}

	return newToken, nil
}

// InvalidateSession removes a session.
func InvalidateSession(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	ctx := context.Background()
	key := sessionKey(sessionToken)

	userIDStr, err := database.RedisClient.HGet(ctx, key, "user_id").Result()
	if err == nil {
		if userID, perr := uuid.Parse(userIDStr); perr == nil && userID != uuid.Nil {
			database.RedisClient.SRem(ctx, userSessionsKey(userID), sessionToken)
		}
	}

	return database.RedisClient.Del(ctx, key).Err()
}

// InvalidateOtherSessions removes every session of a user except keepToken.
// Called after a password change so only the changing session stays logged in.
func InvalidateOtherSessions(userID uuid.UUID, keepToken string) error {
	ctx := context.Background()
	tokens, err := database.RedisClient.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if token == keepToken {
			continue
		}
		database.RedisClient.Del(ctx, sessionKey(token))
		database.RedisClient.SRem(ctx, userSessionsKey(userID), token)
	}
	return nil
}

// InvalidateUserSessions removes every session of a user.
func InvalidateUserSessions(userID uuid.UUID) error {
	return InvalidateOtherSessions(userID, "")
}
