package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/glossahub/glossahub-backend/internal/forms"
	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// UpdateProfileRequest carries the named sub-forms of the profile page plus
// the active tab anchor for the redirect.
type UpdateProfileRequest struct {
	Languages     forms.LanguagesForm     `json:"languages"`
	Editor        forms.EditorForm        `json:"editor"`
	Subscriptions forms.SubscriptionsForm `json:"subscriptions"`
	Notifications forms.NotificationsForm `json:"notifications"`
	Dashboard     forms.DashboardForm     `json:"dashboard"`
	Identity      forms.IdentityForm      `json:"identity"`
	ActiveTab     string                  `json:"active_tab"`
}

// GetProfile returns the profile page data: current sub-form values, watched
// projects, the API token and available identity providers. Loading the
// profile defaults its language from the request locale when unset, and the
// language cookie is refreshed either way.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	profile, err := services.GetOrCreateProfile(user.ID, requestLanguage(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	watched, err := services.ListWatchedProjects(profile.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	apiToken, err := services.GetToken(user.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	setLanguageCookie(w, profile.Language)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"user":         user,
		"profile":      profile,
		"watched":      watched,
		"api_token":    apiToken,
		"new_backends": registry.Federated(),
		"has_password": user.HasUsablePassword(),
	})
}

// UpdateProfile handles the multi-sub-form profile save. Every sub-form is
// validated independently; persistence happens only when all of them are
// valid, one atomic update per sub-form. The demo account never saves.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if cfg.DemoServer && user.IsDemo {
		denyDemo(w, req.ActiveTab)
		return
	}

	// Validate all sub-forms before touching anything
	allErrors := forms.FieldErrors{}
	allErrors.Merge("languages", req.Languages.Validate())
	allErrors.Merge("editor", req.Editor.Validate())
	allErrors.Merge("subscriptions", req.Subscriptions.Validate())
	allErrors.Merge("notifications", req.Notifications.Validate())
	allErrors.Merge("dashboard", req.Dashboard.Validate())
	allErrors.Merge("identity", req.Identity.Validate())

	if !allErrors.Empty() {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Errors: allErrors})
		return
	}

	profile, err := services.GetOrCreateProfile(user.ID, requestLanguage(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Save changes, one sub-form at a time
	if err := services.SaveProfileLanguages(profile.ID, req.Languages.Language, req.Languages.SecondaryLanguages); err != nil {
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	if err := services.SaveEditorSettings(profile.ID, req.Editor.TranslateMode, req.Editor.HideCompleted,
		req.Editor.SecondaryInZen, req.Editor.EditorLink, req.Editor.SpecialChars); err != nil {
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	if err := services.ReplaceSubscriptions(profile.ID, req.Subscriptions.Projects); err != nil {
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	notifications := models.Profile{
		SubscribeAnyTranslation: req.Notifications.SubscribeAnyTranslation,
		SubscribeNewString:      req.Notifications.SubscribeNewString,
		SubscribeNewSuggestion:  req.Notifications.SubscribeNewSuggestion,
		SubscribeNewContributor: req.Notifications.SubscribeNewContributor,
		SubscribeNewComment:     req.Notifications.SubscribeNewComment,
		SubscribeMergeFailure:   req.Notifications.SubscribeMergeFailure,
		SubscribeNewLanguage:    req.Notifications.SubscribeNewLanguage,
	}
	if err := services.SaveNotificationSettings(profile.ID, &notifications); err != nil {
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	if err := services.SaveDashboardSettings(profile.ID, req.Dashboard.DashboardView); err != nil {
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	if err := services.SaveUserFields(user.ID, req.Identity.FullName, req.Identity.Email); err != nil {
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}

	// Activate the (possibly changed) language for the rest of the request
	setLanguageCookie(w, req.Languages.Language)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Message:  "Your profile has been updated.",
		Redirect: redirectProfile(req.ActiveTab),
	})
}

// UploadAvatar stores a custom avatar image for the current user.
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if cloudinaryService == nil {
		http.Error(w, "File upload service not available", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, "Avatar image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	avatarURL, err := cloudinaryService.UploadAvatar(r.Context(), file)
	if err != nil {
		log.Printf("ERROR: avatar upload failed for %s: %v", user.Username, err)
		http.Error(w, "Failed to upload avatar", http.StatusInternalServerError)
		return
	}

	profile, err := services.GetOrCreateProfile(user.ID, requestLanguage(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if err := services.SetAvatarURL(profile.ID, avatarURL); err != nil {
		http.Error(w, "Failed to save avatar", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"avatar_url": avatarURL,
	})
}

// RemoveAccount anonymizes the account and terminates every session.
// Bound POST-only.
func RemoveAccount(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if cfg.DemoServer && user.IsDemo {
		denyDemo(w, "")
		return
	}

	// Notify before the email is scrubbed
	services.NotifyAccountActivity(user, requestIP(r), r.UserAgent(), models.ActivityRemoval)

	if err := services.RemoveUser(user.ID); err != nil {
		http.Error(w, "Failed to remove account", http.StatusInternalServerError)
		return
	}
	services.InvalidateUserSessions(user.ID)
	clearSessionCookie(w)

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Message:  "Your account has been removed.",
		Redirect: "/",
	})
}

// Watch adds a project to the current user's watched set.
func Watch(w http.ResponseWriter, r *http.Request) {
	watchProject(w, r, true)
}

// Unwatch removes a project from the current user's watched set.
func Unwatch(w http.ResponseWriter, r *http.Request) {
	watchProject(w, r, false)
}

func watchProject(w http.ResponseWriter, r *http.Request, watch bool) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "project")
	project, err := services.GetProjectBySlug(slug)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}

	profile, err := services.GetOrCreateProfile(user.ID, requestLanguage(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if watch {
		err = services.AddSubscription(profile.ID, project.ID)
	} else {
		err = services.RemoveSubscription(profile.ID, project.ID)
	}
	if err != nil {
		http.Error(w, "Failed to update subscriptions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Redirect: "/projects/" + project.Slug,
	})
}
