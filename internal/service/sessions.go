package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kontobank/kontobank/internal/auth"
	"github.com/kontobank/kontobank/internal/cache"
	"github.com/kontobank/kontobank/internal/metrics"
	"github.com/kontobank/kontobank/internal/model"
	"github.com/kontobank/kontobank/internal/repository"
)

const (
	// DefaultSessionTTL is how long an issued token stays valid.
	DefaultSessionTTL = 24 * time.Hour

	maxTokenAttempts = 3
)

// SessionCache is the read-through cache in front of the session store.
// *cache.Cache satisfies it.
type SessionCache interface {
	GetSession(ctx context.Context, tokenHash string) (*model.Session, error)
	SetSession(ctx context.Context, session *model.Session, now time.Time) error
	RevokeSession(ctx context.Context, tokenHash string, at time.Time) error
}

// IssuedToken is returned once at login.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// SessionRegistry issues, resolves and revokes bearer tokens.
type SessionRegistry struct {
	sessions repository.SessionStore
	cache    SessionCache
	ttl      time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder
	now      func() time.Time
	generate func() (*auth.GeneratedToken, error)
}

// NewSessionRegistry creates a new SessionRegistry. sessionCache may be nil.
func NewSessionRegistry(sessions repository.SessionStore, sessionCache SessionCache, ttl time.Duration, logger *slog.Logger, recorder metrics.Recorder) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionRegistry{
		sessions: sessions,
		cache:    sessionCache,
		ttl:      ttl,
		logger:   logger.With("component", "sessions"),
		metrics:  recorder,
		now:      time.Now,
		generate: auth.GenerateToken,
	}
}

// Issue creates a session for userID. A token hash collision is retried with
// a fresh token.
func (r *SessionRegistry) Issue(ctx context.Context, userID string) (*IssuedToken, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := r.generate()
		if err != nil {
			return nil, internalError("generate token", err)
		}

		now := r.now().UTC()
		session := &model.Session{
			ID:        newID(),
			UserID:    userID,
			TokenHash: token.Hash,
			CreatedAt: now,
			ExpiresAt: now.Add(r.ttl),
		}

		err = r.sessions.CreateSession(ctx, session)
		if err == nil {
			return &IssuedToken{Token: token.Plaintext, ExpiresAt: session.ExpiresAt}, nil
		}
		if !errors.Is(err, repository.ErrTokenExists) {
			return nil, internalError("create session", err)
		}

		r.logger.Warn("session token collision, retrying", "attempt", attempt)
	}

	return nil, internalError("create session", fmt.Errorf("token collision after %d attempts", maxTokenAttempts))
}

// Resolve returns the user bound to a live token.
func (r *SessionRegistry) Resolve(ctx context.Context, token string) (string, error) {
	hash, err := auth.ParseToken(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	now := r.now()

	if r.cache != nil {
		session, err := r.cache.GetSession(ctx, hash)
		switch {
		case err == nil:
			if session.IsActiveAt(now) {
				r.metrics.IncSessionCacheHit()
				return session.UserID, nil
			}
		case errors.Is(err, cache.ErrSessionRevoked):
			r.metrics.IncSessionCacheHit()
			return "", ErrInvalidToken
		case !errors.Is(err, cache.ErrCacheMiss):
			r.logger.Warn("session cache lookup failed", "error", err)
		}
		r.metrics.IncSessionCacheMiss()
	}

	session, err := r.sessions.GetSessionByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return "", ErrInvalidToken
		}
		return "", internalError("get session", err)
	}
	if !session.IsActiveAt(now) {
		return "", ErrInvalidToken
	}

	if r.cache != nil && session.RevokedAt == nil {
		if err := r.cache.SetSession(ctx, session, now); err != nil {
			r.logger.Warn("session cache store failed", "error", err)
		}
	}

	return session.UserID, nil
}

// Revoke ends a live session. Unknown, expired and already revoked tokens are
// all reported as ErrInvalidToken.
func (r *SessionRegistry) Revoke(ctx context.Context, token string) error {
	hash, err := auth.ParseToken(token)
	if err != nil {
		return ErrInvalidToken
	}

	now := r.now().UTC()
	if err := r.sessions.RevokeSession(ctx, hash, now); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrInvalidToken
		}
		return internalError("revoke session", err)
	}

	if r.cache != nil {
		if err := r.cache.RevokeSession(ctx, hash, now); err != nil {
			r.logger.Warn("session cache revoke failed", "error", err)
		}
	}

	return nil
}

// Sweep deletes sessions that stopped being usable before the cutoff.
func (r *SessionRegistry) Sweep(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.sessions.DeleteStaleSessions(ctx, before)
	if err != nil {
		return 0, internalError("sweep sessions", err)
	}
	r.metrics.AddSessionsSwept(n)
	return n, nil
}
