package storage

import (
	"errors"
	"strings"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when an entry or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a user with the same email already exists.
	ErrConflict = errors.New("already exists")
)

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
