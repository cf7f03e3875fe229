// Package models defines server-side data models persisted in the identity store.
package models

import (
	"strings"
	"time"
)

// User is the canonical account record owned by the identity store.
type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserView is the public projection of a User. It never carries the hash.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// View projects u onto its public fields.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Username: u.UserName, Email: u.Email}
}

// NormalizeEmail trims and lowercases an email address. The same function is
// applied on write and on lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims a username; case is preserved.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
