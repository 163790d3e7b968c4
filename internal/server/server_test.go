package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(h http.Handler) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(h, Config{
		Port:            0,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: 2 * time.Second,
	}, logger)
}

func waitForListener(t *testing.T, s *Server) string {
	t.Helper()
	require.Eventually(t, func() bool {
		return !strings.HasPrefix(s.Addr(), ":")
	}, 2*time.Second, 10*time.Millisecond)

	_, port, err := net.SplitHostPort(s.Addr())
	require.NoError(t, err)
	return net.JoinHostPort("127.0.0.1", port)
}

func TestServer_ServesAndShutsDownInReverseOrder(t *testing.T) {
	s := testServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownFunc {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	s.OnShutdown("sweeper", record("sweeper"))
	s.OnShutdown("cache", record("cache"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	addr := waitForListener(t, s)
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.Equal(t, []string{"cache", "sweeper"}, order)
}

func TestServer_ShutdownErrorsAreJoined(t *testing.T) {
	s := testServer(http.NotFoundHandler())

	boom := errors.New("boom")
	s.OnShutdown("failing", func(context.Context) error { return boom })
	s.OnShutdown("fine", func(context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	waitForListener(t, s)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestServer_ListenError(t *testing.T) {
	first := testServer(http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = first.Run(ctx) }()
	addr := waitForListener(t, first)

	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	second := testServer(http.NotFoundHandler())
	second.httpServer.Addr = ":" + port

	err = second.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}
