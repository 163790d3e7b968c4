package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontobank/kontobank/internal/metrics"
	"github.com/kontobank/kontobank/internal/model"
	"github.com/kontobank/kontobank/internal/repository"
)

// MaxDepositAmount is the largest single deposit accepted.
var MaxDepositAmount = decimal.New(1_000_000_000, 0)

const (
	// maxAmountIntegerDigits is the digit count of MaxDepositAmount.
	maxAmountIntegerDigits = 10
	// maxAmountScale allows trailing zeros such as "1.500" but keeps the
	// rescale done by Round cheap.
	maxAmountScale = 18
)

// Ledger owns account balances.
type Ledger struct {
	accounts repository.AccountStore
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewLedger creates a new Ledger.
func NewLedger(accounts repository.AccountStore, recorder metrics.Recorder) *Ledger {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Ledger{
		accounts: accounts,
		metrics:  recorder,
		now:      time.Now,
	}
}

// ValidateAmount accepts positive amounts with at most two decimal places
// that do not exceed MaxDepositAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	// Exponent notation like 1e9999999 decodes cheaply but makes any
	// arithmetic rescale a huge big.Int, so bound it first.
	exp := int64(amount.Exponent())
	if exp < -maxAmountScale || exp+int64(amount.NumDigits()) > maxAmountIntegerDigits {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(model.MoneyScale)) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(MaxDepositAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// OpenAccount creates the user's zero-balance account and returns its ID.
func (l *Ledger) OpenAccount(ctx context.Context, userID string) (string, error) {
	return l.open(ctx, l.accounts, userID)
}

func (l *Ledger) open(ctx context.Context, accounts repository.AccountStore, userID string) (string, error) {
	account := model.NewAccount(newID(), userID, l.now().UTC())
	if err := accounts.CreateAccount(ctx, account); err != nil {
		return "", internalError("create account", err)
	}
	return account.ID, nil
}

// Balance returns the current balance.
func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	account, err := l.accounts.GetAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, internalError("get account", err)
	}
	return account.Balance, nil
}

// Deposit adds amount to the balance as one atomic increment and returns the
// new balance.
func (l *Ledger) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	start := time.Now()
	defer func() {
		l.metrics.ObserveDepositDuration(time.Since(start))
	}()

	if err := ValidateAmount(amount); err != nil {
		l.metrics.IncDeposit("rejected")
		return decimal.Zero, err
	}

	account, err := l.accounts.Deposit(ctx, userID, amount, l.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			return decimal.Zero, ErrAccountNotFound
		case errors.Is(err, repository.ErrBalanceOutOfRange):
			l.metrics.IncDeposit("rejected")
			return decimal.Zero, ErrInvalidAmount
		default:
			return decimal.Zero, internalError("deposit", err)
		}
	}

	l.metrics.IncDeposit("success")
	return account.Balance, nil
}
