package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontobank/kontobank/internal/model"
	"github.com/kontobank/kontobank/internal/repository"
)

func seedUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &model.User{ID: "u-" + username, Username: username, PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateAccount(context.Background(), model.NewAccount("a-"+username, user.ID, now)); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return user
}

func TestStore_DuplicateUsername(t *testing.T) {
	s := New()
	seedUser(t, s, "alice")

	err := s.CreateUser(context.Background(), &model.User{ID: "x", Username: "alice"})
	if !errors.Is(err, repository.ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}

	// Usernames are case-sensitive.
	if err := s.CreateUser(context.Background(), &model.User{ID: "y", Username: "Alice"}); err != nil {
		t.Fatalf("expected distinct username to succeed, got %v", err)
	}
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.CreateUser(ctx, &model.User{ID: "u1", Username: "bob"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.GetUserByUsername(ctx, "bob"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected user to be rolled back, got %v", err)
	}
}

func TestStore_WithinTxCommits(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.CreateUser(ctx, &model.User{ID: "u1", Username: "bob"})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	n, err := s.CountUsers(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 user, got %d (%v)", n, err)
	}
}

func TestStore_FailOnInsideTx(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("disk full")
	s.FailOn("CreateAccount", boom)

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.CreateUser(ctx, &model.User{ID: "u1", Username: "carol"}); err != nil {
			return err
		}
		return tx.CreateAccount(ctx, model.NewAccount("a1", "u1", time.Now()))
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if n, _ := s.CountUsers(ctx); n != 0 {
		t.Fatalf("expected no users after rollback, got %d", n)
	}
}

func TestStore_DepositOverflow(t *testing.T) {
	s := New()
	user := seedUser(t, s, "dave")
	ctx := context.Background()

	if _, err := s.Deposit(ctx, user.ID, maxBalance, time.Now()); err != nil {
		t.Fatalf("Deposit to max: %v", err)
	}

	_, err := s.Deposit(ctx, user.ID, decimal.RequireFromString("0.01"), time.Now())
	if !errors.Is(err, repository.ErrBalanceOutOfRange) {
		t.Fatalf("expected ErrBalanceOutOfRange, got %v", err)
	}

	acc, _ := s.GetAccountByUserID(ctx, user.ID)
	if !acc.Balance.Equal(maxBalance) {
		t.Errorf("balance changed on failed deposit: %s", acc.Balance)
	}
}

func TestStore_DepositUnknownAccount(t *testing.T) {
	s := New()

	_, err := s.Deposit(context.Background(), "missing", decimal.NewFromInt(1), time.Now())
	if !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestStore_Sessions(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	live := &model.Session{ID: "s1", UserID: "u1", TokenHash: "live", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	old := &model.Session{ID: "s2", UserID: "u1", TokenHash: "old", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	for _, sess := range []*model.Session{live, old} {
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	if err := s.CreateSession(ctx, &model.Session{ID: "s3", TokenHash: "live"}); !errors.Is(err, repository.ErrTokenExists) {
		t.Fatalf("expected ErrTokenExists, got %v", err)
	}

	if err := s.RevokeSession(ctx, "live", now); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if err := s.RevokeSession(ctx, "live", now); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected second revoke to fail, got %v", err)
	}
	if err := s.RevokeSession(ctx, "old", now); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected revoke of expired session to fail, got %v", err)
	}

	got, err := s.GetSessionByTokenHash(ctx, "live")
	if err != nil {
		t.Fatalf("GetSessionByTokenHash: %v", err)
	}
	if got.StatusAt(now) != model.SessionStatusRevoked {
		t.Errorf("expected revoked, got %s", got.StatusAt(now))
	}

	n, err := s.DeleteStaleSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteStaleSessions: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 stale sessions, got %d", n)
	}
}
