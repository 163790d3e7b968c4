// Package repository provides database access layer.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// DBTX is the subset of pgx used by the repository.
// Both *pgxpool.Pool and pgx.Tx satisfy this interface.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Options tunes the connection pool and the startup wait.
type Options struct {
	MaxConns        int32
	MinConns        int32
	ConnectAttempts int
	ConnectInterval time.Duration
	QueryTimeout    time.Duration
	Logger          *slog.Logger
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		MaxConns:        10,
		MinConns:        2,
		ConnectAttempts: 10,
		ConnectInterval: 3 * time.Second,
		QueryTimeout:    5 * time.Second,
		Logger:          slog.Default(),
	}
}

// Repository provides database access methods.
type Repository struct {
	pool         *pgxpool.Pool
	db           DBTX
	queryTimeout time.Duration
}

var _ Store = (*Repository)(nil)

// New creates a new Repository with a connection pool.
// The database may still be starting, so the first ping is retried
// opts.ConnectAttempts times with a fixed opts.ConnectInterval.
func New(ctx context.Context, databaseURL string, opts Options) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = opts.MaxConns
	if opts.MinConns > 0 && opts.MinConns <= opts.MaxConns {
		config.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := waitForDatabase(ctx, pool, opts); err != nil {
		pool.Close()
		return nil, err
	}

	return &Repository{pool: pool, db: pool, queryTimeout: opts.QueryTimeout}, nil
}

// waitForDatabase pings until the database answers or attempts run out.
func waitForDatabase(ctx context.Context, pool *pgxpool.Pool, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := opts.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(opts.ConnectInterval))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		pingCtx, cancel := context.WithTimeout(ctx, opts.QueryTimeout)
		defer cancel()

		if err := pool.Ping(pingCtx); err != nil {
			logger.Warn("waiting for database",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
	}

	return nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// WithinTx runs fn inside a transaction. The Store passed to fn is bound to
// the transaction; returning an error rolls back every write made through it.
// Nested calls use savepoints.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{pool: r.pool, db: tx, queryTimeout: r.queryTimeout})
	})
}

// withTimeout bounds a single storage call.
func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}
