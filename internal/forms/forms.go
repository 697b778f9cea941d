// Package forms holds the validators for every account form. Each form is a
// plain struct mirroring its JSON payload with a Validate method returning
// per-field errors; handlers persist only when every sub-form validated.
package forms

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/glossahub/glossahub-backend/pkg/utils"
)

// FieldErrors maps field name to a user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Empty reports whether validation passed.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Merge folds other's errors into e under a sub-form prefix.
func (e FieldErrors) Merge(prefix string, other FieldErrors) {
	for field, message := range other {
		e.Add(prefix+"."+field, message)
	}
}

var (
	languageRegex = regexp.MustCompile(`^[a-z]{2,3}(_[A-Za-z]{2,4})?$`)
	slugRegex     = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// Translate mode choices.
var translateModes = map[string]bool{"full": true, "zen": true}

var dashboardViews = map[string]bool{
	models.DashboardWatched:     true,
	models.DashboardLanguages:   true,
	models.DashboardSuggestions: true,
}

// LanguagesForm is the translated-languages sub-form of the profile page.
type LanguagesForm struct {
	Language           string   `json:"language"`
	SecondaryLanguages []string `json:"secondary_languages"`
}

func (f *LanguagesForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Language = strings.TrimSpace(f.Language)
	if f.Language == "" {
		errs.Add("language", "Translation language is required")
	} else if !languageRegex.MatchString(f.Language) {
		errs.Add("language", "Enter a valid language code")
	}
	for _, lang := range f.SecondaryLanguages {
		if !languageRegex.MatchString(lang) {
			errs.Add("secondary_languages", "Enter valid language codes")
			break
		}
	}
	return errs
}

// EditorForm is the editor-preferences sub-form.
type EditorForm struct {
	TranslateMode  string `json:"translate_mode"`
	HideCompleted  bool   `json:"hide_completed"`
	SecondaryInZen bool   `json:"secondary_in_zen"`
	EditorLink     string `json:"editor_link"`
	SpecialChars   string `json:"special_chars"`
}

func (f *EditorForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if !translateModes[f.TranslateMode] {
		errs.Add("translate_mode", "Choose a valid translation mode")
	}
	if f.EditorLink != "" {
		u, err := url.Parse(f.EditorLink)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs.Add("editor_link", "Editor link must be a valid http(s) URL")
		}
	}
	if len(f.SpecialChars) > 30 {
		errs.Add("special_chars", "At most 30 special characters")
	}
	return errs
}

// SubscriptionsForm is the watched-projects sub-form.
type SubscriptionsForm struct {
	Projects []string `json:"projects"`
}

func (f *SubscriptionsForm) Validate() FieldErrors {
	errs := FieldErrors{}
	for _, slug := range f.Projects {
		if !slugRegex.MatchString(slug) {
			errs.Add("projects", "Invalid project identifier")
			break
		}
	}
	return errs
}

// NotificationsForm is the notification-settings sub-form. Booleans only, so
// decoding is the validation; kept for the uniform validate/apply pipeline.
type NotificationsForm struct {
	SubscribeAnyTranslation bool `json:"subscribe_any_translation"`
	SubscribeNewString      bool `json:"subscribe_new_string"`
	SubscribeNewSuggestion  bool `json:"subscribe_new_suggestion"`
	SubscribeNewContributor bool `json:"subscribe_new_contributor"`
	SubscribeNewComment     bool `json:"subscribe_new_comment"`
	SubscribeMergeFailure   bool `json:"subscribe_merge_failure"`
	SubscribeNewLanguage    bool `json:"subscribe_new_language"`
}

func (f *NotificationsForm) Validate() FieldErrors {
	return FieldErrors{}
}

// DashboardForm is the dashboard-view sub-form.
type DashboardForm struct {
	DashboardView string `json:"dashboard_view"`
}

func (f *DashboardForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if !dashboardViews[f.DashboardView] {
		errs.Add("dashboard_view", "Choose a valid dashboard view")
	}
	return errs
}

// IdentityForm is the user-identity sub-form (name and email on the account).
type IdentityForm struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (f *IdentityForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.FullName = strings.TrimSpace(f.FullName)
	if f.FullName == "" {
		errs.Add("full_name", "Name is required")
	} else if len(f.FullName) > 190 {
		errs.Add("full_name", "Name is too long")
	}
	if err := utils.ValidateEmail(f.Email); err != nil {
		errs.Add("email", err.Error())
	}
	return errs
}

// ContactForm is the public contact form.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (f *ContactForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs.Add("name", "Name is required")
	}
	if err := utils.ValidateEmail(f.Email); err != nil {
		errs.Add("email", err.Error())
	}
	if strings.TrimSpace(f.Subject) == "" {
		errs.Add("subject", "Subject is required")
	}
	if len(strings.TrimSpace(f.Message)) < 10 {
		errs.Add("message", "Message must be at least 10 characters long")
	}
	return errs
}

// HostingForm is the commercial hosting request form.
type HostingForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Project string `json:"project"`
	URL     string `json:"url"`
	Repo    string `json:"repo"`
	Mask    string `json:"mask"`
	Message string `json:"message"`
}

func (f *HostingForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs.Add("name", "Name is required")
	}
	if err := utils.ValidateEmail(f.Email); err != nil {
		errs.Add("email", err.Error())
	}
	if strings.TrimSpace(f.Project) == "" {
		errs.Add("project", "Project name is required")
	}
	if strings.TrimSpace(f.Repo) == "" {
		errs.Add("repo", "Repository is required")
	}
	if strings.TrimSpace(f.Mask) == "" {
		errs.Add("mask", "File mask is required")
	}
	return errs
}

// RegistrationForm is the registration / email-binding form.
type RegistrationForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (f *RegistrationForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if err := utils.ValidateUsername(f.Username); err != nil {
		errs.Add("username", err.Error())
	}
	if err := utils.ValidateEmail(f.Email); err != nil {
		errs.Add("email", err.Error())
	}
	if len(strings.TrimSpace(f.FullName)) > 190 {
		errs.Add("full_name", "Name is too long")
	}
	return errs
}

// EmailBindForm is the authenticated "connect email" form.
type EmailBindForm struct {
	Email string `json:"email"`
}

func (f *EmailBindForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if err := utils.ValidateEmail(f.Email); err != nil {
		errs.Add("email", err.Error())
	}
	return errs
}

// SetPasswordForm carries the new password pair of the password page.
type SetPasswordForm struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (f *SetPasswordForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if f.NewPassword == "" {
		errs.Add("new_password", "New password is required")
	} else if err := utils.CheckPasswordStrength(f.NewPassword); err != nil {
		errs.Add("new_password", err.Error())
	}
	if f.NewPassword != f.ConfirmPassword {
		errs.Add("confirm_password", "Passwords do not match")
	}
	return errs
}
