package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account with the identity provider. Group
// members reference users by ID once their invite is reconciled.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique, stored lowercase).
	// Used for login and invite matching.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser constructs a user with a fresh ID and normalized email.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}

// Principal is the authenticated identity attached to a request. It is what
// the identity provider hands the service layer: enough to resolve membership
// and reconcile invites, nothing more.
type Principal struct {
	ID          string
	DisplayName string
	Email       string
}

// PrincipalOf derives a request principal from a user record.
func PrincipalOf(u *User) Principal {
	return Principal{ID: u.ID, DisplayName: u.Name, Email: u.Email}
}
