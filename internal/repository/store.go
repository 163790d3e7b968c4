package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontobank/kontobank/internal/model"
)

// UserStore persists credentials.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// AccountStore persists balances.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByUserID(ctx context.Context, userID string) (*model.Account, error)
	// Deposit atomically adds amount to the balance and returns the updated account.
	Deposit(ctx context.Context, userID string, amount decimal.Decimal, at time.Time) (*model.Account, error)
}

// SessionStore persists issued sessions keyed by token hash.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	RevokeSession(ctx context.Context, tokenHash string, at time.Time) error
	DeleteStaleSessions(ctx context.Context, before time.Time) (int64, error)
}

// Store is the storage handle injected into the services.
// *Repository is the PostgreSQL implementation; memory.Store is the
// in-process substitute used by tests.
type Store interface {
	UserStore
	AccountStore
	SessionStore

	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
