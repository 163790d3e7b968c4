package service

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kontobank/kontobank/internal/auth"
	"github.com/kontobank/kontobank/internal/metrics"
	"github.com/kontobank/kontobank/internal/repository/memory"
)

var fastParams = auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store    *memory.Store
	clock    *fakeClock
	metrics  *metrics.InMemoryRecorder
	logs     *bytes.Buffer
	creds    *CredentialStore
	ledger   *Ledger
	sessions *SessionRegistry
	auth     *AuthService
	balance  *BalanceService
}

func newTestEnv(t *testing.T, sessionCache SessionCache) *testEnv {
	t.Helper()

	store := memory.New()
	clock := newFakeClock()
	recorder := metrics.NewInMemory()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: logs}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	creds := NewCredentialStore(store, auth.NewHasher(fastParams))
	creds.now = clock.Now
	ledger := NewLedger(store, recorder)
	ledger.now = clock.Now
	sessions := NewSessionRegistry(store, sessionCache, time.Hour, logger, recorder)
	sessions.now = clock.Now

	return &testEnv{
		store:    store,
		clock:    clock,
		metrics:  recorder,
		logs:     logs,
		creds:    creds,
		ledger:   ledger,
		sessions: sessions,
		auth:     NewAuthService(store, creds, ledger, sessions, logger, recorder),
		balance:  NewBalanceService(sessions, ledger),
	}
}

// registerAndLogin returns a live token for a fresh user.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	_, err := e.auth.RegisterUser(context.Background(), username, "secret-"+username)
	require.NoError(t, err)

	issued, err := e.auth.Login(context.Background(), username, "secret-"+username)
	require.NoError(t, err)
	return issued.Token
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type lockedWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
