// Package memory is an in-process repository.Store used by service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontobank/kontobank/internal/model"
	"github.com/kontobank/kontobank/internal/repository"
)

// maxBalance is the largest value NUMERIC(14,2) can hold.
var maxBalance = decimal.RequireFromString("999999999999.99")

type state struct {
	users    map[string]*model.User    // by username
	accounts map[string]*model.Account // by user ID
	sessions map[string]*model.Session // by token hash
}

func newState() *state {
	return &state{
		users:    make(map[string]*model.User),
		accounts: make(map[string]*model.Account),
		sessions: make(map[string]*model.Session),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.accounts {
		a := *v
		c.accounts[k] = &a
	}
	for k, v := range s.sessions {
		c.sessions[k] = copySession(v)
	}
	return c
}

// failures holds injected errors keyed by method name.
type failures struct {
	mu  sync.Mutex
	err map[string]error
}

func (f *failures) take(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.err[op]
	delete(f.err, op)
	return err
}

// Store keeps everything in maps guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	state    *state
	failures *failures
}

var _ repository.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		state:    newState(),
		failures: &failures{err: make(map[string]error)},
	}
}

// FailOn makes the next call to the named method return err.
// Transactions opened from s share the injected failures.
func (s *Store) FailOn(op string, err error) {
	s.failures.mu.Lock()
	defer s.failures.mu.Unlock()

	s.failures.err[op] = err
}

// WithinTx runs fn against a private copy of the data and publishes it only
// when fn succeeds. Other callers wait until the transaction finishes.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("WithinTx"); err != nil {
		return err
	}

	tx := &Store{state: s.state.clone(), failures: s.failures}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

// CreateUser stores a copy of user.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("CreateUser"); err != nil {
		return err
	}
	if _, ok := s.state.users[user.Username]; ok {
		return repository.ErrUsernameExists
	}

	u := *user
	s.state.users[user.Username] = &u
	return nil
}

// GetUserByUsername returns a copy of the stored user.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("GetUserByUsername"); err != nil {
		return nil, err
	}
	u, ok := s.state.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	out := *u
	return &out, nil
}

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("CountUsers"); err != nil {
		return 0, err
	}
	return int64(len(s.state.users)), nil
}

// CreateAccount stores a copy of account.
func (s *Store) CreateAccount(_ context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("CreateAccount"); err != nil {
		return err
	}
	if _, ok := s.state.accounts[account.UserID]; ok {
		return repository.ErrAccountExists
	}
	if account.Balance.IsNegative() || account.Balance.GreaterThan(maxBalance) {
		return repository.ErrBalanceOutOfRange
	}

	a := *account
	s.state.accounts[account.UserID] = &a
	return nil
}

// GetAccountByUserID returns a copy of the user's account.
func (s *Store) GetAccountByUserID(_ context.Context, userID string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("GetAccountByUserID"); err != nil {
		return nil, err
	}
	a, ok := s.state.accounts[userID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	out := *a
	return &out, nil
}

// Deposit adds amount under the store lock.
func (s *Store) Deposit(_ context.Context, userID string, amount decimal.Decimal, at time.Time) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("Deposit"); err != nil {
		return nil, err
	}
	a, ok := s.state.accounts[userID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	next := a.Balance.Add(amount)
	if next.IsNegative() || next.GreaterThan(maxBalance) {
		return nil, repository.ErrBalanceOutOfRange
	}
	a.Balance = next
	a.UpdatedAt = at

	out := *a
	return &out, nil
}

// CreateSession stores a copy of session.
func (s *Store) CreateSession(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("CreateSession"); err != nil {
		return err
	}
	if _, ok := s.state.sessions[session.TokenHash]; ok {
		return repository.ErrTokenExists
	}

	s.state.sessions[session.TokenHash] = copySession(session)
	return nil
}

// GetSessionByTokenHash returns a copy of the stored session.
func (s *Store) GetSessionByTokenHash(_ context.Context, tokenHash string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("GetSessionByTokenHash"); err != nil {
		return nil, err
	}
	sess, ok := s.state.sessions[tokenHash]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return copySession(sess), nil
}

// RevokeSession sets RevokedAt on a live session.
func (s *Store) RevokeSession(_ context.Context, tokenHash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("RevokeSession"); err != nil {
		return err
	}
	sess, ok := s.state.sessions[tokenHash]
	if !ok || !sess.IsActiveAt(at) {
		return repository.ErrSessionNotFound
	}

	revokedAt := at
	sess.RevokedAt = &revokedAt
	return nil
}

// DeleteStaleSessions drops sessions expired or revoked at or before the cutoff.
func (s *Store) DeleteStaleSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures.take("DeleteStaleSessions"); err != nil {
		return 0, err
	}

	var n int64
	for hash, sess := range s.state.sessions {
		expired := !sess.ExpiresAt.After(before)
		revoked := sess.RevokedAt != nil && !sess.RevokedAt.After(before)
		if expired || revoked {
			delete(s.state.sessions, hash)
			n++
		}
	}
	return n, nil
}

func copySession(s *model.Session) *model.Session {
	out := *s
	if s.RevokedAt != nil {
		t := *s.RevokedAt
		out.RevokedAt = &t
	}
	return &out
}
