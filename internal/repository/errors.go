package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common errors for repository operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameExists    = errors.New("username already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrBalanceOutOfRange = errors.New("balance out of range")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTokenExists       = errors.New("session token already exists")
)

// PostgreSQL SQLSTATE codes.
const (
	codeUniqueViolation        = "23505"
	codeCheckViolation         = "23514"
	codeNumericValueOutOfRange = "22003"
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// isOutOfRange reports numeric overflow or a failed balance CHECK.
func isOutOfRange(err error) bool {
	return hasCode(err, codeNumericValueOutOfRange) || hasCode(err, codeCheckViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
