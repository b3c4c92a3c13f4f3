package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User is a row of the users table.
//
// PasswordHash holds the credential exactly as the user typed it. Credentials
// are compared by plain equality; this is a known weakness kept for parity
// with the existing data set and must not be mistaken for hashing.
type User struct {
	ID           *surrealmodels.RecordID       `json:"id,omitempty"`
	Username     string                        `json:"username" validate:"required"`
	PasswordHash string                        `json:"password_hash" validate:"required"`
	CreatedAt    *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
}

// Credentials is a username/password pair as submitted by a client.
type Credentials struct {
	Username string `validate:"required,notblank"`
	Password string `validate:"required,notblank"`
}

// Validate rejects blank fields before any query is made.
func (c Credentials) Validate() error {
	if err := validatorInstance.Struct(c); err != nil {
		return ErrMissingCredentials
	}
	return nil
}

// UserRepository defines the contract for user data storage operations.
type UserRepository interface {
	// FindByCredentials returns the user whose username and credential both
	// match, or nil when none does.
	FindByCredentials(ctx context.Context, username, password string) (*User, error)

	// FindByUsername returns nil when the username is free.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a new user record.
	Create(ctx context.Context, user *User) (*User, error)
}
