package model

import (
	"strconv"
	"time"
)

// SessionStatus represents the computed status of a session.
type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusExpired SessionStatus = "expired"
	SessionStatusRevoked SessionStatus = "revoked"
)

// Session binds an issued bearer token to a user.
// Only the SHA-256 of the token is kept; the plaintext is returned once at login.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// StatusAt computes the session status at the given instant.
func (s *Session) StatusAt(now time.Time) SessionStatus {
	if s.RevokedAt != nil {
		return SessionStatusRevoked
	}
	if !now.Before(s.ExpiresAt) {
		return SessionStatusExpired
	}
	return SessionStatusActive
}

// IsActiveAt returns true if the token may be used at the given instant.
func (s *Session) IsActiveAt(now time.Time) bool {
	return s.StatusAt(now) == SessionStatusActive
}

// CachedSession represents session data stored in a Redis hash.
// Uses string types for Redis hash compatibility.
type CachedSession struct {
	ID        string `redis:"id"`
	UserID    string `redis:"user_id"`
	CreatedAt string `redis:"created_at"` // Unix nanoseconds
	ExpiresAt string `redis:"expires_at"` // Unix nanoseconds
}

// ToCachedSession converts an active Session to its cache representation.
func (s *Session) ToCachedSession() *CachedSession {
	return &CachedSession{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: strconv.FormatInt(s.CreatedAt.UnixNano(), 10),
		ExpiresAt: strconv.FormatInt(s.ExpiresAt.UnixNano(), 10),
	}
}

// ToSession converts a CachedSession back to a Session.
// Returns nil if the cached data is incomplete or corrupted.
func (c *CachedSession) ToSession(tokenHash string) *Session {
	if c.ID == "" || c.UserID == "" {
		return nil
	}

	created, err := strconv.ParseInt(c.CreatedAt, 10, 64)
	if err != nil {
		return nil
	}
	expires, err := strconv.ParseInt(c.ExpiresAt, 10, 64)
	if err != nil {
		return nil
	}

	return &Session{
		ID:        c.ID,
		UserID:    c.UserID,
		TokenHash: tokenHash,
		CreatedAt: time.Unix(0, created).UTC(),
		ExpiresAt: time.Unix(0, expires).UTC(),
	}
}
