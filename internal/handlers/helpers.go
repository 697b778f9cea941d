package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/glossahub/glossahub-backend/internal/config"
	"github.com/glossahub/glossahub-backend/internal/forms"
	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/glossahub/glossahub-backend/internal/providers"
	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/glossahub/glossahub-backend/pkg/clientip"
	"github.com/google/uuid"
)

const (
	// SessionCookieName carries the redis session token.
	SessionCookieName = "gh_session"
	// LanguageCookieName carries the active interface language.
	LanguageCookieName = "gh_language"
)

var (
	cfg               *config.Config
	registry          *providers.Registry
	cloudinaryService *services.CloudinaryService
)

// Init wires the handler package to the loaded configuration.
func Init(c *config.Config) {
	cfg = c
	registry = providers.NewRegistry(c.AuthBackends)
}

// InitCloudinaryService initializes the avatar upload backend.
func InitCloudinaryService(c *config.Config) error {
	service, err := services.NewCloudinaryService(c.CloudinaryName, c.CloudinaryAPIKey, c.CloudinaryAPISecret)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

// APIResponse is the common response envelope.
type APIResponse struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message,omitempty"`
	Redirect  string                 `json:"redirect,omitempty"`
	Errors    forms.FieldErrors      `json:"errors,omitempty"`
	CSRFToken string                 `json:"csrf_token,omitempty"`
	User      map[string]interface{} `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func setLanguageCookie(w http.ResponseWriter, language string) {
	http.SetCookie(w, &http.Cookie{
		Name:   LanguageCookieName,
		Value:  language,
		Path:   "/",
		MaxAge: 365 * 24 * 3600,
	})
}

// sessionToken returns the session token from the request cookie, or "".
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// currentUser resolves the request's session to a user. Returns (nil, token)
// for anonymous or expired sessions.
func currentUser(r *http.Request) (*models.User, string) {
	token := sessionToken(r)
	if token == "" {
		return nil, ""
	}
	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok || userID == uuid.Nil {
		return nil, token
	}
	user, err := services.GetUserByID(userID)
	if err != nil {
		log.Printf("ERROR: failed to load session user: %v", err)
		return nil, token
	}
	if user == nil || !user.IsActive {
		return nil, token
	}
	return user, token
}

// requireAuth loads the authenticated user or writes a 401 redirect to login.
func requireAuth(w http.ResponseWriter, r *http.Request) (*models.User, string, bool) {
	user, token := currentUser(r)
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, APIResponse{
			Success:  false,
			Message:  "Authentication required",
			Redirect: "/login",
		})
		return nil, "", false
	}
	return user, token, true
}

// requestLanguage extracts the primary language from Accept-Language,
// defaulting to "en".
func requestLanguage(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return "en"
	}
	first := strings.TrimSpace(strings.Split(header, ",")[0])
	first = strings.Split(first, ";")[0]
	lang := strings.Split(strings.ReplaceAll(first, "-", "_"), "_")[0]
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "en"
	}
	return lang
}

// redirectProfile builds the profile redirect target, honoring an #anchor
// coming from the active tab of the submitting page.
func redirectProfile(page string) string {
	url := "/profile"
	if page != "" && strings.HasPrefix(page, "#") {
		url += page
	}
	return url
}

// denyDemo blocks edits to the demo account on the demo server.
func denyDemo(w http.ResponseWriter, activeTab string) {
	writeJSON(w, http.StatusForbidden, APIResponse{
		Success:  false,
		Message:  "You cannot change the demo account on the demo server.",
		Redirect: redirectProfile(activeTab),
	})
}

func requestIP(r *http.Request) string {
	return clientip.RealClientIP(r, cfg != nil && cfg.TrustProxy)
}
