package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/glossahub/glossahub-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func changePasswordRequest(t *testing.T, body ChangePasswordRequest) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/profile/password", bytes.NewReader(payload))
}

func TestChangePasswordWrongCurrentIncrementsAttempts(t *testing.T) {
	env := newTestEnv(t)

	user := testUser()
	hash, err := utils.HashPassword("current-password-ok")
	require.NoError(t, err)
	user.PasswordHash = hash

	token := env.login(t, user)
	env.expectUserByID(user)

	csrfBefore, err := services.CSRFToken(token)
	require.NoError(t, err)

	w := doRequest(ChangePassword, changePasswordRequest(t, ChangePasswordRequest{
		Password:        "wrong-guess",
		NewPassword:     "brand-new-password-1",
		ConfirmPassword: "brand-new-password-1",
	}), token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, false, body["success"])

	attempts, err := services.AuthAttempts(token)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)

	// Failed verification rotates the CSRF token and hands out the new one
	csrfAfter, err := services.CSRFToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, csrfBefore, csrfAfter)
	assert.Equal(t, csrfAfter, body["csrf_token"])
}

func TestChangePasswordCeilingTerminatesSession(t *testing.T) {
	env := newTestEnv(t)

	user := testUser()
	hash, err := utils.HashPassword("current-password-ok")
	require.NoError(t, err)
	user.PasswordHash = hash

	token := env.login(t, user)
	for i := 0; i < env.cfg.AuthMaxAttempts; i++ {
		_, err := services.IncrementAuthAttempts(token)
		require.NoError(t, err)
	}
	env.expectUserByID(user)

	// Even the correct password is refused once the ceiling is reached
	w := doRequest(ChangePassword, changePasswordRequest(t, ChangePasswordRequest{
		Password:        "current-password-ok",
		NewPassword:     "brand-new-password-1",
		ConfirmPassword: "brand-new-password-1",
	}), token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, "/login", body["redirect"])

	_, ok, _ := services.ValidateSession(token)
	assert.False(t, ok, "session should be terminated at the ceiling")
}

func TestChangePasswordSuccess(t *testing.T) {
	env := newTestEnv(t)

	user := testUser()
	hash, err := utils.HashPassword("current-password-ok")
	require.NoError(t, err)
	user.PasswordHash = hash

	token := env.login(t, user)
	other := env.login(t, user)

	_, err = services.IncrementAuthAttempts(token)
	require.NoError(t, err)

	env.expectUserByID(user)
	env.mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
		WithArgs(sqlmock.AnyArg(), user.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doRequest(ChangePassword, changePasswordRequest(t, ChangePasswordRequest{
		Password:        "current-password-ok",
		NewPassword:     "brand-new-password-1",
		ConfirmPassword: "brand-new-password-1",
	}), token)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "/profile#auth", body["redirect"])

	// Other sessions are terminated, the current one is cycled to a new key
	_, ok, _ := services.ValidateSession(other)
	assert.False(t, ok)
	_, ok, _ = services.ValidateSession(token)
	assert.False(t, ok, "old session key should be gone after cycling")

	var newToken string
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			newToken = c.Value
		}
	}
	require.NotEmpty(t, newToken)

	userID, ok, err := services.ValidateSession(newToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.ID, userID)

	attempts, err := services.AuthAttempts(newToken)
	require.NoError(t, err)
	assert.Equal(t, 0, attempts)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestChangePasswordWithoutUsablePasswordSkipsVerification(t *testing.T) {
	env := newTestEnv(t)

	user := testUser() // no password hash

	token := env.login(t, user)
	require.NoError(t, services.SetSessionFlag(token, services.FlagShowSetPassword))

	env.expectUserByID(user)
	env.mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
		WithArgs(sqlmock.AnyArg(), user.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doRequest(ChangePassword, changePasswordRequest(t, ChangePasswordRequest{
		NewPassword:     "brand-new-password-1",
		ConfirmPassword: "brand-new-password-1",
	}), token)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	// Forced set clears the flag and lands on the plain profile page
	assert.Equal(t, "/profile", body["redirect"])
}

func TestChangePasswordWeakNewPassword(t *testing.T) {
	env := newTestEnv(t)

	user := testUser()
	hash, err := utils.HashPassword("current-password-ok")
	require.NoError(t, err)
	user.PasswordHash = hash

	token := env.login(t, user)
	env.expectUserByID(user)

	w := doRequest(ChangePassword, changePasswordRequest(t, ChangePasswordRequest{
		Password:        "current-password-ok",
		NewPassword:     "weak",
		ConfirmPassword: "weak",
	}), token)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Correct current password still resets the counter
	attempts, err := services.AuthAttempts(token)
	require.NoError(t, err)
	assert.Equal(t, 0, attempts)
}

func TestChangePasswordDemoAccountBlocked(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.DemoServer = true

	user := testUser()
	user.IsDemo = true
	hash, err := utils.HashPassword("current-password-ok")
	require.NoError(t, err)
	user.PasswordHash = hash

	token := env.login(t, user)
	env.expectUserByID(user)

	w := doRequest(ChangePassword, changePasswordRequest(t, ChangePasswordRequest{
		Password:        "current-password-ok",
		NewPassword:     "brand-new-password-1",
		ConfirmPassword: "brand-new-password-1",
	}), token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
