package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often stale sessions are removed.
const DefaultSweepInterval = 10 * time.Minute

// SessionSweeper periodically deletes expired and revoked sessions.
type SessionSweeper struct {
	registry *SessionRegistry
	interval time.Duration
	logger   *slog.Logger

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewSessionSweeper creates a new SessionSweeper.
func NewSessionSweeper(registry *SessionRegistry, interval time.Duration, logger *slog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSweeper{
		registry: registry,
		interval: interval,
		logger:   logger.With("component", "sessions.sweeper"),
	}
}

// Run sweeps on every tick. Blocks until the context is cancelled or
// Shutdown is called.
func (s *SessionSweeper) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("sweeper already started")
	}
	s.started = true
	s.done = make(chan struct{})
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopping")
			return nil
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *SessionSweeper) sweepOnce(ctx context.Context) {
	n, err := s.registry.Sweep(ctx, s.registry.now().UTC())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("session sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("stale sessions removed", "count", n)
	}
}

// Shutdown stops the sweeper, waiting for an in-flight sweep to finish.
// It implements server.ShutdownFunc for integration with graceful shutdown.
func (s *SessionSweeper) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("session sweeper shutdown timed out")
		return ctx.Err()
	}
}
