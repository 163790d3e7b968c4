// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontobank/kontobank/internal/model"
)

// ErrMissingAmount is returned when a deposit carries no amount.
var ErrMissingAmount = errors.New("amount is required")

// CredentialsRequest is the body of POST /users and POST /sessions.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRequest carries a session token in the body for clients that cannot
// set the Authorization header.
type TokenRequest struct {
	Token string `json:"token,omitempty"`
}

// DepositRequest is the body of POST /me/accounts/transactions.
// Amount accepts a JSON number or a numeric string.
type DepositRequest struct {
	Token  string          `json:"token,omitempty"`
	Amount json.RawMessage `json:"amount"`
}

// ParseAmount decodes the raw amount without going through float64.
func (r *DepositRequest) ParseAmount() (decimal.Decimal, error) {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, ErrMissingAmount
	}

	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// Money renders a balance as a JSON number with exactly two decimals.
type Money decimal.Decimal

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(model.MoneyScale)), nil
}

// Decimal returns the underlying value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionResponse is returned by a successful login.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BalanceResponse is returned by balance queries.
type BalanceResponse struct {
	Balance Money `json:"balance"`
}

// DepositResponse is returned by a successful deposit.
type DepositResponse struct {
	NewBalance Money `json:"newBalance"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
