// Package model defines domain entities for the application.
package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxUsernameLength matches the users.username column width.
const MaxUsernameLength = 50

// Username validation errors.
var (
	ErrUsernameEmpty   = errors.New("username must not be empty")
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameInvalid = errors.New("username contains control characters or invalid UTF-8")
	ErrPasswordEmpty   = errors.New("password must not be empty")
)

// User is a registered bank customer. Username is case-sensitive and immutable.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidateUsername checks the username is usable as a unique login name.
// Usernames are compared verbatim, so no trimming or case folding happens here.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameEmpty
	}
	if !utf8.ValidString(username) {
		return ErrUsernameInvalid
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	// Postgres text columns cannot hold NUL.
	if strings.IndexFunc(username, unicode.IsControl) >= 0 {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidatePassword only rejects empty secrets; strength policy is out of scope.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}
	return nil
}
