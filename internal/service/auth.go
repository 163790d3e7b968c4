package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kontobank/kontobank/internal/metrics"
	"github.com/kontobank/kontobank/internal/repository"
)

// AuthService orchestrates registration, login and logout.
type AuthService struct {
	store       repository.Store
	credentials *CredentialStore
	ledger      *Ledger
	sessions    *SessionRegistry
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, credentials *CredentialStore, ledger *Ledger, sessions *SessionRegistry, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:       store,
		credentials: credentials,
		ledger:      ledger,
		sessions:    sessions,
		logger:      logger.With("component", "auth"),
		metrics:     recorder,
	}
}

// RegisterUser creates the user and its zero-balance account in one
// transaction and returns the new user ID.
func (s *AuthService) RegisterUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.credentials.newUser(username, password)
	if err != nil {
		s.metrics.IncRegistration("failed")
		return "", err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := s.credentials.create(ctx, tx, user); err != nil {
			return err
		}
		_, err := s.ledger.open(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			s.metrics.IncRegistration("duplicate")
			return "", err
		}
		s.metrics.IncRegistration("failed")
		if errors.Is(err, ErrInternal) {
			return "", err
		}
		return "", internalError("register user", err)
	}

	s.metrics.IncRegistration("success")
	s.logger.Info("user registered", "user_id", user.ID)

	if s.logger.Enabled(ctx, slog.LevelDebug) {
		if total, err := s.store.CountUsers(ctx); err == nil {
			s.logger.Debug("registered users", "users_total", total)
		}
	}

	return user.ID, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*IssuedToken, error) {
	userID, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		s.metrics.IncLogin("failed")
		return nil, err
	}

	token, err := s.sessions.Issue(ctx, userID)
	if err != nil {
		s.metrics.IncLogin("failed")
		return nil, err
	}

	s.metrics.IncLogin("success")
	s.logger.Info("user logged in", "user_id", userID)
	return token, nil
}

// Logout revokes the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	s.metrics.IncLogout()
	return nil
}
