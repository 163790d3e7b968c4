package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kontobank/kontobank/internal/model"
)

// Balances cross the wire as text so NUMERIC never passes through float64.
const accountColumns = `id, user_id, balance::text, created_at, updated_at`

// CreateAccount inserts a new account into the database.
func (r *Repository) CreateAccount(ctx context.Context, account *model.Account) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO accounts (id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.Balance.StringFixed(model.MoneyScale),
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountExists
		}
		if isOutOfRange(err) {
			return ErrBalanceOutOfRange
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccountByUserID retrieves the account owned by a user.
func (r *Repository) GetAccountByUserID(ctx context.Context, userID string) (*model.Account, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by user ID: %w", err)
	}

	return account, nil
}

// Deposit adds amount to the balance in a single statement. Concurrent
// deposits serialize on the row lock, so none of them is lost.
func (r *Repository) Deposit(ctx context.Context, userID string, amount decimal.Decimal, at time.Time) (*model.Account, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE accounts
		SET balance = balance + $2::numeric, updated_at = $3
		WHERE user_id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(r.db.QueryRow(ctx, query, userID, amount.String(), at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		if isOutOfRange(err) {
			return nil, ErrBalanceOutOfRange
		}
		return nil, fmt.Errorf("failed to deposit: %w", err)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		account model.Account
		balance string
	)

	err := row.Scan(
		&account.ID,
		&account.UserID,
		&balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balance, err)
	}

	return &account, nil
}
