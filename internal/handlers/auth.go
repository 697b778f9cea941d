package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/glossahub/glossahub-backend/pkg/utils"
)

// LoginRequest is the credentials form.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginPage returns the login form context: federated backends and whether a
// password reset is possible. A single federated backend short-circuits to
// its begin-flow.
func LoginPage(w http.ResponseWriter, r *http.Request) {
	if user, _ := currentUser(r); user != nil {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: redirectProfile("")})
		return
	}

	if backend, ok := registry.SingleFederated(); ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: backend.BeginURL})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"login_backends": registry.Federated(),
		"can_reset":      registry.HasEmail(),
	})
}

// Login handles password login against the local email backend.
func Login(w http.ResponseWriter, r *http.Request) {
	if user, _ := currentUser(r); user != nil {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: redirectProfile("")})
		return
	}

	if backend, ok := registry.SingleFederated(); ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: backend.BeginURL})
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := services.GetUserByUsername(req.Username)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if user == nil || !user.IsActive || !user.HasUsablePassword() {
		writeJSON(w, http.StatusUnauthorized, APIResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		services.NotifyAccountActivity(user, requestIP(r), r.UserAgent(), models.ActivityFailedLogin)
		writeJSON(w, http.StatusUnauthorized, APIResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	// A fresh session always starts with a zero attempt counter
	token, err := services.CreateSession(user.ID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, token)

	services.NotifyAccountActivity(user, requestIP(r), r.UserAgent(), models.ActivityLogin)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Message:  "Login successful",
		Redirect: redirectProfile(""),
		User: map[string]interface{}{
			"id":        user.ID.String(),
			"username":  user.Username,
			"full_name": user.FullName,
		},
	})
}

// Logout destroys the current session. Bound POST-only.
func Logout(w http.ResponseWriter, r *http.Request) {
	_, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	services.InvalidateSession(token)
	clearSessionCookie(w)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Message:  "Thanks for using GlossaHub!",
		Redirect: "/",
	})
}
