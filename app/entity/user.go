package entity

import (
	"database/sql"
	"time"
)

// User is the identity root for a registered account. IDs are uuid v4 strings
// generated application-side, never reused.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserEmail is a verifiable email address bound to exactly one user.
// It stays inactive until its activation token is redeemed.
type UserEmail struct {
	ID              string
	Email           string
	Active          bool
	ActivationToken string
	UserID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserPassword holds the derived secret material for a user. Hash and salt are
// opaque strings; the plaintext is never persisted. ResetToken is reserved for
// the password reset flow.
type UserPassword struct {
	ID         string
	UserID     string
	Hash       string
	Salt       string
	ResetToken sql.NullString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
