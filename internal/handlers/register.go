package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	mathrand "math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/glossahub/glossahub-backend/internal/forms"
	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/glossahub/glossahub-backend/pkg/utils"
	"github.com/google/uuid"
)

// captchaSessionField holds the expected answer to the arithmetic challenge.
const captchaSessionField = "captcha_answer"

// RegisterPage returns the registration form context. A single federated
// backend short-circuits to its begin-flow, mirroring the login page. With
// captcha enabled an arithmetic challenge is generated and its answer parked
// in the visitor's session.
func RegisterPage(w http.ResponseWriter, r *http.Request) {
	if user, _ := currentUser(r); user != nil {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: redirectProfile("")})
		return
	}

	if backend, ok := registry.SingleFederated(); ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: backend.BeginURL})
		return
	}

	page := map[string]interface{}{
		"success":           true,
		"registration_open": cfg.RegistrationOpen,
		"captcha":           cfg.RegistrationCaptcha,
		"login_backends":    registry.Federated(),
	}

	if cfg.RegistrationCaptcha {
		token := sessionToken(r)
		if token == "" {
			var err error
			token, err = services.CreateAnonymousSession()
			if err != nil {
				http.Error(w, "Failed to create session", http.StatusInternalServerError)
				return
			}
			setSessionCookie(w, token)
		}

		a, b := mathrand.Intn(10)+1, mathrand.Intn(10)+1
		if err := services.SetSessionValue(token, captchaSessionField, strconv.Itoa(a+b)); err != nil {
			http.Error(w, "Failed to store challenge", http.StatusInternalServerError)
			return
		}
		page["captcha_question"] = fmt.Sprintf("What is %d + %d?", a, b)
	}

	writeJSON(w, http.StatusOK, page)
}

// Register starts email registration. The response never reveals whether the
// address already has an account: both branches end on the email-sent page.
// A new account is created without a usable password; the set-password flag
// forces choosing one on first entry to the profile.
func Register(w http.ResponseWriter, r *http.Request) {
	if user, _ := currentUser(r); user != nil {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: redirectProfile("")})
		return
	}

	if backend, ok := registry.SingleFederated(); ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: backend.BeginURL})
		return
	}

	if !cfg.RegistrationOpen {
		writeJSON(w, http.StatusForbidden, APIResponse{
			Success: false,
			Message: "Sorry, new registrations are turned off on this site.",
		})
		return
	}

	var req struct {
		forms.RegistrationForm
		Captcha string `json:"captcha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	form := req.RegistrationForm
	if errs := form.Validate(); !errs.Empty() {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Errors: errs})
		return
	}

	token := sessionToken(r)

	if cfg.RegistrationCaptcha {
		expected := ""
		if token != "" {
			expected, _ = services.SessionValue(token, captchaSessionField)
		}
		if expected == "" || strings.TrimSpace(req.Captcha) != expected {
			writeJSON(w, http.StatusBadRequest, APIResponse{
				Success: false,
				Errors:  forms.FieldErrors{"captcha": "Please solve the challenge correctly."},
			})
			return
		}
		services.ClearSessionFlag(token, captchaSessionField)
	}

	form.Username = utils.NormalizeUsername(form.Username)

	existing, err := services.GetUserByEmail(form.Email)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if token == "" {
		token, err = services.CreateAnonymousSession()
		if err != nil {
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, token)
	}

	if existing != nil {
		// The address is already bound to an account. Record the connect
		// attempt and fall through to the same waiting page.
		services.NotifyAccountActivity(existing, requestIP(r), r.UserAgent(), models.ActivityConnect)
	} else {
		taken, err := services.GetUserByUsername(form.Username)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if taken != nil {
			writeJSON(w, http.StatusBadRequest, APIResponse{
				Success: false,
				Errors:  forms.FieldErrors{"username": "This username is already taken."},
			})
			return
		}

		user, err := services.CreateUser(form.Username, form.Email, form.FullName, "")
		if err != nil {
			http.Error(w, "Failed to create account", http.StatusInternalServerError)
			return
		}
		if err := services.BindSession(token, user.ID); err != nil {
			log.Printf("ERROR: failed to bind registration session: %v", err)
		}
		services.SetSessionFlag(token, services.FlagShowSetPassword)
	}

	services.SetSessionFlag(token, services.FlagRegistrationEmailSent)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Redirect: "/email-sent",
	})
}

// EmailLogin binds an additional email address to the current account.
func EmailLogin(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var form forms.EmailBindForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if errs := form.Validate(); !errs.Empty() {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Errors: errs})
		return
	}

	services.NotifyAccountActivity(user, requestIP(r), r.UserAgent(), models.ActivityConnect)
	services.SetSessionFlag(token, services.FlagRegistrationEmailSent)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Redirect: "/email-sent",
	})
}

// ResetRequest is the password reset form.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetPassword starts the password reset flow. It requires the email backend,
// always lands on the email-sent page regardless of whether the address is
// known, and swaps the session for a fresh one carrying the reset flags.
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	if !registry.HasEmail() {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Password reset is not available on this site.",
		})
		return
	}

	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Errors:  forms.FieldErrors{"email": err.Error()},
		})
		return
	}

	// Drop whatever session came in; the reset flow gets a clean one.
	if old := sessionToken(r); old != "" {
		services.InvalidateSession(old)
	}
	token, err := services.CreateAnonymousSession()
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, token)

	user, err := services.GetUserByEmail(req.Email)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	// The session stays anonymous: possession of the mailbox is proven by
	// the emailed link, never by knowing the address.
	if user != nil && user.IsActive {
		services.NotifyAccountActivity(user, requestIP(r), r.UserAgent(), models.ActivityReset)
	}

	services.SetSessionFlag(token, services.FlagPasswordReset)
	services.SetSessionFlag(token, services.FlagRegistrationEmailSent)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Redirect: "/email-sent",
	})
}

// EmailSent serves the waiting page after registration or reset. Without the
// session flag there is nothing to wait for and the visitor goes home. The
// page is one-shot: the flag is cleared for sessions bound to a user, and
// anonymous sessions are flushed entirely.
func EmailSent(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" || !services.SessionFlag(token, services.FlagRegistrationEmailSent) {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: "/"})
		return
	}

	passwordReset := services.SessionFlag(token, services.FlagPasswordReset)

	userID, _, _ := services.ValidateSession(token)
	if userID == uuid.Nil {
		services.InvalidateSession(token)
		clearSessionCookie(w)
	} else {
		services.ClearSessionFlag(token, services.FlagRegistrationEmailSent)
		services.ClearSessionFlag(token, services.FlagPasswordReset)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"password_reset": passwordReset,
	})
}
