package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kontobank/kontobank/internal/auth"
	"github.com/kontobank/kontobank/internal/model"
	"github.com/kontobank/kontobank/internal/repository"
)

// CredentialStore registers users and verifies their passwords.
type CredentialStore struct {
	users  repository.UserStore
	hasher *auth.Hasher
	now    func() time.Time
}

// NewCredentialStore creates a new CredentialStore.
func NewCredentialStore(users repository.UserStore, hasher *auth.Hasher) *CredentialStore {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultParams)
	}
	return &CredentialStore{
		users:  users,
		hasher: hasher,
		now:    time.Now,
	}
}

// Register stores a new user and returns its ID.
func (c *CredentialStore) Register(ctx context.Context, username, password string) (string, error) {
	user, err := c.newUser(username, password)
	if err != nil {
		return "", err
	}
	if err := c.create(ctx, c.users, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// Verify checks the password and returns the user ID. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (c *CredentialStore) Verify(ctx context.Context, username, password string) (string, error) {
	// A name that could never have been registered is not looked up.
	if password == "" || model.ValidateUsername(username) != nil {
		c.hasher.VerifyDummy(password)
		return "", ErrInvalidCredentials
	}

	user, err := c.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.hasher.VerifyDummy(password)
			return "", ErrInvalidCredentials
		}
		return "", internalError("lookup user", err)
	}

	ok, err := c.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", internalError("verify password", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return user.ID, nil
}

// newUser validates input and hashes the password. No storage is touched,
// so callers can do this before opening a transaction.
func (c *CredentialStore) newUser(username, password string) (*model.User, error) {
	if err := model.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := c.hasher.Hash(password)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	now := c.now().UTC()
	return &model.User{
		ID:           newID(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (c *CredentialStore) create(ctx context.Context, users repository.UserStore, user *model.User) error {
	if err := users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return ErrDuplicateUsername
		}
		return internalError("create user", err)
	}
	return nil
}
