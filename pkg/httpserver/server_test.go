package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authcore/pkg/httpserver"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func waitListening(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	var stopped atomic.Bool
	srv := httpserver.New(
		httpserver.WithAddr(addr),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithStopHook(func(context.Context) error {
			stopped.Store(true)
			return nil
		}),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }))
	}()
	waitListening(t, addr)

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	waitDone(t, done)
	assert.True(t, stopped.Load())
	assert.NoError(t, srv.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestManualShutdown(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	srv := httpserver.New(httpserver.WithAddr(addr), httpserver.WithShutdownTimeout(100*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), nil) }()
	waitListening(t, addr)

	require.NoError(t, srv.Shutdown(context.Background()))
	waitDone(t, done)
}

func TestStartErrors(t *testing.T) {
	t.Parallel()

	t.Run("bad address", func(t *testing.T) {
		t.Parallel()
		err := httpserver.New(httpserver.WithAddr(":invalid")).Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)
	})

	t.Run("failing start hook", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("migrations failed")
		srv := httpserver.New(
			httpserver.WithAddr(freeAddr(t)),
			httpserver.WithStartHook(func(context.Context) error { return boom }),
		)
		err := srv.Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("already running", func(t *testing.T) {
		t.Parallel()
		addr := freeAddr(t)
		srv := httpserver.New(httpserver.WithAddr(addr), httpserver.WithShutdownTimeout(50*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx, nil) }()
		waitListening(t, addr)

		err := srv.Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)
		assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)
		cancel()
		waitDone(t, done)
	})
}

func TestStopHookError(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	srv := httpserver.New(
		httpserver.WithAddr(addr),
		httpserver.WithStopHook(func(context.Context) error { return errors.New("flush failed") }),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), nil) }()
	waitListening(t, addr)

	assert.ErrorIs(t, srv.Shutdown(context.Background()), httpserver.ErrShutdown)
	waitDone(t, done)
}

func TestHookPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { httpserver.WithStartHook(nil) })
	assert.Panics(t, func() { httpserver.WithStopHook(nil) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(0) })
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) httpserver.HealthReport {
	t.Helper()
	var report httpserver.HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	return report
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		httpserver.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alive", decodeReport(t, w).Status)
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		h := httpserver.ReadinessHandler(nil,
			httpserver.Check{Name: "users", Fn: ok},
			httpserver.Check{Name: "sessions", Fn: ok},
		)
		h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		report := decodeReport(t, w)
		assert.Equal(t, "ready", report.Status)
		assert.Equal(t, map[string]string{"users": "ok", "sessions": "ok"}, report.Checks)
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		h := httpserver.ReadinessHandler(nil,
			httpserver.Check{Name: "users", Fn: ok},
			httpserver.Check{Name: "sessions", Fn: down},
		)
		h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		report := decodeReport(t, w)
		assert.Equal(t, "not_ready", report.Status)
		assert.Equal(t, "failed", report.Checks["sessions"])
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("no checks is ready", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		httpserver.ReadinessHandler(nil)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	srv := httpserver.NewFromConfig(httpserver.Config{Addr: addr, ShutdownTimeout: 50 * time.Millisecond})
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), nil) }()
	waitListening(t, addr)
	require.NoError(t, srv.Shutdown(context.Background()))
	waitDone(t, done)
}
