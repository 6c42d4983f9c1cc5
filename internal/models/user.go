package models

import "time"

// User captures application-facing fields for an account holder.
type User struct {
	ID                    int64      `json:"id"`
	Login                 string     `json:"login"`
	Name                  string     `json:"name"`
	Surname               string     `json:"surname"`
	Email                 string     `json:"email"`
	Role                  string     `json:"role"`
	PasswordHash          string     `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	LastSuccessfulLoginAt *time.Time `json:"last_successful_login_at,omitempty"`
	LastFailedLoginAt     *time.Time `json:"last_failed_login_at,omitempty"`
}

// NewUser is the input for creating a user. Password is plaintext and
// is hashed before it reaches storage.
type NewUser struct {
	Login    string
	Name     string
	Surname  string
	Email    string
	Role     string
	Password string
}
