package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(30) NOT NULL UNIQUE,
			email VARCHAR(190) NOT NULL DEFAULT '',
			full_name VARCHAR(190) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_demo BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Profiles table (1:1 with users, created lazily on first access)
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			language VARCHAR(10) NOT NULL DEFAULT '',
			secondary_languages TEXT NOT NULL DEFAULT '',
			translate_mode VARCHAR(20) NOT NULL DEFAULT 'full',
			hide_completed BOOLEAN NOT NULL DEFAULT FALSE,
			secondary_in_zen BOOLEAN NOT NULL DEFAULT TRUE,
			editor_link VARCHAR(255) NOT NULL DEFAULT '',
			special_chars VARCHAR(30) NOT NULL DEFAULT '',
			dashboard_view VARCHAR(20) NOT NULL DEFAULT 'watched',
			avatar_url TEXT NOT NULL DEFAULT '',
			subscribe_any_translation BOOLEAN NOT NULL DEFAULT FALSE,
			subscribe_new_string BOOLEAN NOT NULL DEFAULT FALSE,
			subscribe_new_suggestion BOOLEAN NOT NULL DEFAULT FALSE,
			subscribe_new_contributor BOOLEAN NOT NULL DEFAULT FALSE,
			subscribe_new_comment BOOLEAN NOT NULL DEFAULT FALSE,
			subscribe_merge_failure BOOLEAN NOT NULL DEFAULT FALSE,
			subscribe_new_language BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(user_id)
		)`,

		// Translation projects (owned by the translation service, referenced here)
		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			slug VARCHAR(60) NOT NULL UNIQUE,
			name VARCHAR(190) NOT NULL,
			website VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Watched projects (profile subscriptions)
		`CREATE TABLE IF NOT EXISTS profile_subscriptions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(profile_id, project_id)
		)`,

		// API tokens (one per user)
		`CREATE TABLE IF NOT EXISTS auth_tokens (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token VARCHAR(40) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(user_id)
		)`,

		// Translation suggestions (read-only here, listed on user pages)
		`CREATE TABLE IF NOT EXISTS suggestions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(30) NOT NULL,
			project_slug VARCHAR(60) NOT NULL,
			target TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_user_id ON profiles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_profile_subscriptions_profile_id ON profile_subscriptions(profile_id)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_tokens_user_id ON auth_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_tokens_token ON auth_tokens(token)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestions_username ON suggestions(username)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestions_created_at ON suggestions(created_at)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
