package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

const userPageActivityLimit = 10

// UserPage returns the public page of a user: profile basics, the projects
// their recent activity touched and their last actions.
func UserPage(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := services.GetUserByUsername(username)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if user == nil || !user.IsActive {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	activity, err := services.LastActivity(r.Context(), user.Username, userPageActivityLimit)
	if err != nil {
		log.Printf("WARNING: Failed to load activity for %s: %v", user.Username, err)
		activity = nil
	}
	projects, err := services.ActivityProjects(r.Context(), user.Username)
	if err != nil {
		log.Printf("WARNING: Failed to load activity projects for %s: %v", user.Username, err)
		projects = nil
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"username":  user.Username,
			"full_name": user.FullName,
			"joined":    user.CreatedAt,
		},
		"activity": activity,
		"projects": projects,
	})
}

// UserAvatar serves the avatar image for a user at one of the allowed sizes.
// System accounts with noreply addresses get the static fallback, accounts
// with an uploaded avatar redirect to it, everyone else gets Gravatar bytes
// cached server side.
func UserAvatar(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	size, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil || !services.AvatarSizes[size] {
		http.Error(w, "Invalid avatar size", http.StatusBadRequest)
		return
	}

	user, err := services.GetUserByUsername(username)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if user.Email == "" || strings.HasPrefix(user.Email, "noreply") {
		http.Redirect(w, r, services.FallbackAvatarURL(size), http.StatusFound)
		return
	}

	profile, err := services.GetOrCreateProfile(user.ID, "en")
	if err == nil && profile.AvatarURL != "" {
		http.Redirect(w, r, profile.AvatarURL, http.StatusFound)
		return
	}

	data, err := services.GetAvatarImage(user.Email, size)
	if err != nil {
		log.Printf("WARNING: Avatar fetch failed for %s: %v", user.Username, err)
		http.Redirect(w, r, services.FallbackAvatarURL(size), http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=604800")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}

// UserSuggestions lists a user's pending suggestions, paginated.
func UserSuggestions(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := services.GetUserByUsername(username)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if user == nil || !user.IsActive {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	suggestions, err := services.ListSuggestions(user.Username, page)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"username":    user.Username,
		"page":        page,
		"per_page":    services.SuggestionsPerPage,
		"suggestions": suggestions,
	})
}
