// Package domain holds the core recipe server entities.
package domain

import "time"

// User is an account that owns recipes, tags and ingredients.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanAuthenticate reports whether tokens for this user should be honored.
func (u *User) CanAuthenticate() bool {
	return u != nil && u.IsActive
}
