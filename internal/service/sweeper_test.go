package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSweeper_RemovesStaleSessions(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	issued, err := env.sessions.Issue(ctx, "u1")
	require.NoError(t, err)
	env.clock.Advance(2 * time.Hour)

	sweeper := NewSessionSweeper(env.sessions, 5*time.Millisecond, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- sweeper.Run(ctx) }()

	require.Eventually(t, func() bool {
		return env.metrics.Snapshot().SessionsSwept == 1
	}, time.Second, 5*time.Millisecond)

	_, err = env.sessions.Resolve(ctx, issued.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, sweeper.Shutdown(shutdownCtx))
	assert.NoError(t, <-errCh)
}

func TestSessionSweeper_RunTwice(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := NewSessionSweeper(env.sessions, time.Hour, nil)
	go func() { _ = sweeper.Run(ctx) }()

	require.Eventually(t, func() bool {
		sweeper.mu.Lock()
		defer sweeper.mu.Unlock()
		return sweeper.started
	}, time.Second, time.Millisecond)

	assert.Error(t, sweeper.Run(ctx))
	require.NoError(t, sweeper.Shutdown(context.Background()))
}

func TestSessionSweeper_ShutdownBeforeRun(t *testing.T) {
	env := newTestEnv(t, nil)
	sweeper := NewSessionSweeper(env.sessions, time.Hour, nil)

	assert.NoError(t, sweeper.Shutdown(context.Background()))
}
