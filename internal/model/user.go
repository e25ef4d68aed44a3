package model

import (
	"strings"
	"time"
)

// User represents a user in the database. Users are created lazily on the
// first successful login-link verification, never on a mere login request.
type User struct {
	ID        string
	Email     string
	Credits   int
	Suspended bool
	CreatedAt time.Time
}

// LoginRequest represents a magic-link login request. Website is a honeypot
// field: real clients leave it empty.
type LoginRequest struct {
	Email   string `json:"email"`
	Website string `json:"website,omitempty"`
}

// LoginResponse represents the outcome of a login request. DevLink carries
// the generated magic link when the echo email sender is active.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DevLink string `json:"dev_link,omitempty"`
}

// UserResponse represents user data safe for API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminUser is a user row in the admin console, with message counts.
type AdminUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Credits       int       `json:"credits"`
	Suspended     bool      `json:"suspended"`
	CreatedAt     time.Time `json:"created_at"`
	SentCount     int       `json:"sent_count"`
	ReceivedCount int       `json:"received_count"`
}

// NormalizeEmail lowercases and trims an email address. Every email that
// reaches storage goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserToResponse converts a User to its API representation.
func UserToResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Credits:   u.Credits,
		CreatedAt: u.CreatedAt,
	}
}
