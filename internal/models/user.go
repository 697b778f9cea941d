package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row in PostgreSQL. PasswordHash is empty for accounts
// created through a federated identity provider that never set a password.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsDemo       bool      `json:"is_demo"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasUsablePassword reports whether password login is possible for this user.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}
