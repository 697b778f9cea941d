package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/glossahub/glossahub-backend/internal/forms"
	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/glossahub/glossahub-backend/pkg/utils"
)

// ChangePasswordRequest is the password page form: the current password plus
// the new password pair. Password is ignored for accounts without a usable
// password (forced set after federated signup).
type ChangePasswordRequest struct {
	Password        string `json:"password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword handles password change / set.
//
// Accounts with a password must verify the current one. Each failed
// verification bumps the per-session attempt counter and rotates the CSRF
// token; at the configured ceiling the session is terminated and the user is
// sent back to login. The counter only resets on a successful verification —
// or implicitly with the fresh session of the next login.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if cfg.DemoServer && user.IsDemo {
		denyDemo(w, "#auth")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doChange := false

	if !user.HasUsablePassword() {
		// Nothing to verify against, go straight to setting one
		doChange = true
	} else {
		attempts, _ := services.AuthAttempts(token)
		if attempts >= cfg.AuthMaxAttempts {
			services.InvalidateSession(token)
			clearSessionCookie(w)
			writeJSON(w, http.StatusUnauthorized, APIResponse{
				Success:  false,
				Message:  "Too many authentication attempts!",
				Redirect: "/login",
			})
			return
		}

		valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
		if err != nil || !valid {
			services.IncrementAuthAttempts(token)
			csrf, _ := services.RotateCSRFToken(token)
			writeJSON(w, http.StatusBadRequest, APIResponse{
				Success:   false,
				Message:   "You have entered an invalid password.",
				Errors:    forms.FieldErrors{"password": "You have entered an invalid password."},
				CSRFToken: csrf,
			})
			return
		}

		doChange = true
		services.ResetAuthAttempts(token)
	}

	setForm := forms.SetPasswordForm{
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}
	if errs := setForm.Validate(); !errs.Empty() || !doChange {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Errors: errs})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}
	if err := services.SetPassword(user.ID, hash); err != nil {
		http.Error(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	// Updating the password logs out all other sessions for the user
	// except the current one.
	services.InvalidateOtherSessions(user.ID, token)

	// Change key for current session
	newToken, err := services.CycleSessionKey(token)
	if err != nil {
		newToken = token
	} else {
		setSessionCookie(w, newToken)
	}

	// Clear flag forcing user to set password
	redirectPage := "#auth"
	if services.SessionFlag(newToken, services.FlagShowSetPassword) {
		services.ClearSessionFlag(newToken, services.FlagShowSetPassword)
		redirectPage = ""
	}

	services.NotifyAccountActivity(user, requestIP(r), r.UserAgent(), models.ActivityPassword)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Message:  "Your password has been changed.",
		Redirect: redirectProfile(redirectPage),
	})
}
