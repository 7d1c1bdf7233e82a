package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusInvited   AccountStatus = "invited"
	StatusSuspended AccountStatus = "suspended"
)

type User struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	AccountStatus AccountStatus `json:"account_status"`
	// Credential fields are absent for invited/social accounts.
	PasswordHash       string    `json:"password_hash,omitempty"`
	PasswordSalt       string    `json:"password_salt,omitempty"`
	PasswordIterations int       `json:"password_iterations,omitempty"`
	EmailVerified      bool      `json:"email_verified"`
	CreatedDate        time.Time `json:"created_date"`
	UpdatedDate        time.Time `json:"updated_date"`
}

// HasPassword reports whether the account carries a password credential.
func (u *User) HasPassword() bool {
	return u.PasswordHash != "" && u.PasswordSalt != ""
}

// Public returns a copy safe to return to non-admin callers: credential
// material is stripped.
func (u User) Public() User {
	u.PasswordHash = ""
	u.PasswordSalt = ""
	u.PasswordIterations = 0
	return u
}
