package models

import (
	"time"

	"github.com/google/uuid"
)

// Dashboard view choices stored on a profile.
const (
	DashboardWatched     = "watched"
	DashboardLanguages   = "languages"
	DashboardSuggestions = "suggestions"
)

// Profile holds translation preferences, 1:1 with a User. Created lazily on
// first access; Language is defaulted from the request locale when empty.
type Profile struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Language           string   `json:"language"`
	SecondaryLanguages []string `json:"secondary_languages"`

	// Editor preferences
	TranslateMode  string `json:"translate_mode"`
	HideCompleted  bool   `json:"hide_completed"`
	SecondaryInZen bool   `json:"secondary_in_zen"`
	EditorLink     string `json:"editor_link"`
	SpecialChars   string `json:"special_chars"`

	DashboardView string `json:"dashboard_view"`
	AvatarURL     string `json:"avatar_url"`

	// Notification subscriptions
	SubscribeAnyTranslation bool `json:"subscribe_any_translation"`
	SubscribeNewString      bool `json:"subscribe_new_string"`
	SubscribeNewSuggestion  bool `json:"subscribe_new_suggestion"`
	SubscribeNewContributor bool `json:"subscribe_new_contributor"`
	SubscribeNewComment     bool `json:"subscribe_new_comment"`
	SubscribeMergeFailure   bool `json:"subscribe_merge_failure"`
	SubscribeNewLanguage    bool `json:"subscribe_new_language"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is a translation project a profile can watch.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Suggestion is a translation suggestion made by a user, listed on the
// per-user suggestions page. Owned by the translation service; read-only here.
type Suggestion struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	ProjectSlug string    `json:"project_slug"`
	Target      string    `json:"target"`
	CreatedAt   time.Time `json:"created_at"`
}
