package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account entity used for authentication.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the server-assigned unique identifier of the user.
	UserID uuid.UUID `json:"id"`

	// Login is the unique user login identifier used during authentication.
	Login string `json:"login"`

	// Password carries the plaintext password on inbound signup/login
	// requests only. It is never persisted and never serialized back.
	Password string `json:"password,omitempty"`

	// PasswordHash is the bcrypt hash stored at the persistence layer.
	// It is never exposed via JSON.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
