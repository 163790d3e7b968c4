package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceService serves token-authenticated balance reads and deposits.
type BalanceService struct {
	sessions *SessionRegistry
	ledger   *Ledger
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(sessions *SessionRegistry, ledger *Ledger) *BalanceService {
	return &BalanceService{sessions: sessions, ledger: ledger}
}

// GetBalance returns the balance of the token holder.
func (s *BalanceService) GetBalance(ctx context.Context, token string) (decimal.Decimal, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}
	return s.ledger.Balance(ctx, userID)
}

// Deposit credits amount to the token holder and returns the new balance.
// The token is checked before the amount.
func (s *BalanceService) Deposit(ctx context.Context, token string, amount decimal.Decimal) (decimal.Decimal, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}
	return s.ledger.Deposit(ctx, userID, amount)
}
