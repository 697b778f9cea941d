package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/glossahub/glossahub-backend/internal/database"
	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/google/uuid"
)

const userColumns = "id, username, email, full_name, password_hash, is_active, is_demo, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.IsActive, &u.IsDemo, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID. Returns (nil, nil) when not found.
func GetUserByID(userID uuid.UUID) (*models.User, error) {
	row := database.PostgresDB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// GetUserByUsername retrieves an active user by username (case-insensitive).
func GetUserByUsername(username string) (*models.User, error) {
	row := database.PostgresDB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = $1`,
		strings.ToLower(strings.TrimSpace(username)))
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when not found.
func GetUserByEmail(email string) (*models.User, error) {
	row := database.PostgresDB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// CreateUser inserts a new user. passwordHash may be empty for accounts that
// will set a password later (forced-set flow).
func CreateUser(username, email, fullName, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	_, err := database.PostgresDB.Exec(`
		INSERT INTO users (id, username, email, full_name, password_hash, is_active, is_demo, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, FALSE, $6)
	`, user.ID, user.Username, user.Email, user.FullName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SaveUserFields updates the identity sub-form fields.
func SaveUserFields(userID uuid.UUID, fullName, email string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE users SET full_name = $1, email = $2 WHERE id = $3
	`, fullName, email, userID)
	return err
}

// SetPassword stores a new password hash for the user.
func SetPassword(userID uuid.UUID, passwordHash string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE users SET password_hash = $1 WHERE id = $2
	`, passwordHash, userID)
	return err
}

// RemoveUser anonymizes an account: deactivates it, scrubs identity fields and
// deletes the API token. The username is kept so history stays attributable.
func RemoveUser(userID uuid.UUID) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE users SET is_active = FALSE, email = '', full_name = '', password_hash = ''
		WHERE id = $1
	`, userID)
	if err != nil {
		return err
	}
	_, err = database.PostgresDB.Exec(`DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	return err
}

const profileColumns = `id, user_id, language, secondary_languages, translate_mode,
		hide_completed, secondary_in_zen, editor_link, special_chars, dashboard_view,
		avatar_url, subscribe_any_translation, subscribe_new_string, subscribe_new_suggestion,
		subscribe_new_contributor, subscribe_new_comment, subscribe_merge_failure,
		subscribe_new_language, created_at, updated_at`

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var p models.Profile
	var secondary string
	err := row.Scan(&p.ID, &p.UserID, &p.Language, &secondary, &p.TranslateMode,
		&p.HideCompleted, &p.SecondaryInZen, &p.EditorLink, &p.SpecialChars, &p.DashboardView,
		&p.AvatarURL, &p.SubscribeAnyTranslation, &p.SubscribeNewString, &p.SubscribeNewSuggestion,
		&p.SubscribeNewContributor, &p.SubscribeNewComment, &p.SubscribeMergeFailure,
		&p.SubscribeNewLanguage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if secondary != "" {
		p.SecondaryLanguages = strings.Split(secondary, ",")
	}
	return &p, nil
}

// GetOrCreateProfile fetches the user's profile, creating it on first access.
// When the stored language is empty it is defaulted from defaultLanguage and
// persisted, so a loaded profile always carries a language.
func GetOrCreateProfile(userID uuid.UUID, defaultLanguage string) (*models.Profile, error) {
	row := database.PostgresDB.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		_, err = database.PostgresDB.Exec(`
			INSERT INTO profiles (id, user_id) VALUES ($1, $2)
		`, uuid.New(), userID)
		if err != nil {
			return nil, err
		}
		row = database.PostgresDB.QueryRow(
			`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
		profile, err = scanProfile(row)
	}
	if err != nil {
		return nil, err
	}

	if profile.Language == "" && defaultLanguage != "" {
		_, err = database.PostgresDB.Exec(`
			UPDATE profiles SET language = $1, updated_at = NOW() WHERE id = $2
		`, defaultLanguage, profile.ID)
		if err != nil {
			return nil, err
		}
		profile.Language = defaultLanguage
	}

	return profile, nil
}

// SaveProfileLanguages persists the languages sub-form.
func SaveProfileLanguages(profileID uuid.UUID, language string, secondary []string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE profiles SET language = $1, secondary_languages = $2, updated_at = NOW()
		WHERE id = $3
	`, language, strings.Join(secondary, ","), profileID)
	return err
}

// SaveEditorSettings persists the editor preferences sub-form.
func SaveEditorSettings(profileID uuid.UUID, translateMode string, hideCompleted, secondaryInZen bool, editorLink, specialChars string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE profiles SET translate_mode = $1, hide_completed = $2, secondary_in_zen = $3,
			editor_link = $4, special_chars = $5, updated_at = NOW()
		WHERE id = $6
	`, translateMode, hideCompleted, secondaryInZen, editorLink, specialChars, profileID)
	return err
}

// SaveNotificationSettings persists the notification sub-form.
func SaveNotificationSettings(profileID uuid.UUID, p *models.Profile) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE profiles SET subscribe_any_translation = $1, subscribe_new_string = $2,
			subscribe_new_suggestion = $3, subscribe_new_contributor = $4,
			subscribe_new_comment = $5, subscribe_merge_failure = $6,
			subscribe_new_language = $7, updated_at = NOW()
		WHERE id = $8
	`, p.SubscribeAnyTranslation, p.SubscribeNewString, p.SubscribeNewSuggestion,
		p.SubscribeNewContributor, p.SubscribeNewComment, p.SubscribeMergeFailure,
		p.SubscribeNewLanguage, profileID)
	return err
}

// SaveDashboardSettings persists the dashboard sub-form.
func SaveDashboardSettings(profileID uuid.UUID, dashboardView string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE profiles SET dashboard_view = $1, updated_at = NOW() WHERE id = $2
	`, dashboardView, profileID)
	return err
}

// SetAvatarURL stores a custom avatar URL on the profile.
func SetAvatarURL(profileID uuid.UUID, avatarURL string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE profiles SET avatar_url = $1, updated_at = NOW() WHERE id = $2
	`, avatarURL, profileID)
	return err
}

// GetProjectBySlug retrieves a project. Returns (nil, nil) when not found.
func GetProjectBySlug(slug string) (*models.Project, error) {
	var p models.Project
	err := database.PostgresDB.QueryRow(`
		SELECT id, slug, name, website, created_at FROM projects WHERE slug = $1
	`, slug).Scan(&p.ID, &p.Slug, &p.Name, &p.Website, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// AddSubscription adds a project to the profile's watched set.
func AddSubscription(profileID, projectID uuid.UUID) error {
	_, err := database.PostgresDB.Exec(`
		INSERT INTO profile_subscriptions (id, profile_id, project_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, project_id) DO NOTHING
	`, uuid.New(), profileID, projectID)
	return err
}

// RemoveSubscription removes a project from the profile's watched set.
func RemoveSubscription(profileID, projectID uuid.UUID) error {
	_, err := database.PostgresDB.Exec(`
		DELETE FROM profile_subscriptions WHERE profile_id = $1 AND project_id = $2
	`, profileID, projectID)
	return err
}

// ReplaceSubscriptions rewrites the profile's watched set from project slugs.
// Unknown slugs are ignored.
func ReplaceSubscriptions(profileID uuid.UUID, slugs []string) error {
	tx, err := database.PostgresDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM profile_subscriptions WHERE profile_id = $1`, profileID); err != nil {
		return err
	}
	for _, slug := range slugs {
		_, err := tx.Exec(`
			INSERT INTO profile_subscriptions (id, profile_id, project_id)
			SELECT $1, $2, id FROM projects WHERE slug = $3
			ON CONFLICT (profile_id, project_id) DO NOTHING
		`, uuid.New(), profileID, slug)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListWatchedProjects lists projects the profile watches.
func ListWatchedProjects(profileID uuid.UUID) ([]models.Project, error) {
	rows, err := database.PostgresDB.Query(`
		SELECT p.id, p.slug, p.name, p.website, p.created_at
		FROM projects p
		JOIN profile_subscriptions s ON s.project_id = p.id
		WHERE s.profile_id = $1
		ORDER BY p.slug
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Website, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteToken removes the user's API token, if any.
func DeleteToken(userID uuid.UUID) error {
	_, err := database.PostgresDB.Exec(`DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	return err
}

// CreateToken stores a fresh API token for the user.
func CreateToken(userID uuid.UUID, token string) error {
	_, err := database.PostgresDB.Exec(`
		INSERT INTO auth_tokens (id, user_id, token) VALUES ($1, $2, $3)
	`, uuid.New(), userID, token)
	return err
}

// GetToken returns the user's API token, or "" when none exists.
func GetToken(userID uuid.UUID) (string, error) {
	var token string
	err := database.PostgresDB.QueryRow(`
		SELECT token FROM auth_tokens WHERE user_id = $1
	`, userID).Scan(&token)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// SuggestionsPerPage is the page size of the per-user suggestion listing.
const SuggestionsPerPage = 25

// ListSuggestions returns one page of a user's suggestions, newest first.
func ListSuggestions(username string, page int) ([]models.Suggestion, error) {
	if page < 1 {
		page = 1
	}
	rows, err := database.PostgresDB.Query(`
		SELECT id, username, project_slug, target, created_at
		FROM suggestions
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, username, SuggestionsPerPage, (page-1)*SuggestionsPerPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suggestions := make([]models.Suggestion, 0)
	for rows.Next() {
		var s models.Suggestion
		if err := rows.Scan(&s.ID, &s.Username, &s.ProjectSlug, &s.Target, &s.CreatedAt); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}
