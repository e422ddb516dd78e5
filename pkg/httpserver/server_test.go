package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/weatherapp/pkg/httpserver"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) hook(name string, err error) httpserver.Hook {
	return func(context.Context, *slog.Logger) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, name)
		return err
	}
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func waitReady(t *testing.T, srv *httpserver.Server) string {
	t.Helper()
	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		require.FailNow(t, "server did not start")
	}
	return srv.Addr()
}

func TestRun_ServesAndStopsOnCancel(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(time.Second),
		httpserver.WithStartHook(rec.hook("start:pool", nil)),
		httpserver.WithStartHook(rec.hook("start:cache", nil)),
		httpserver.WithStopHook(rec.hook("stop:pool", nil)),
		httpserver.WithStopHook(rec.hook("stop:cache", nil)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, okHandler()) }()

	addr := waitReady(t, srv)
	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "run did not finish")
	}

	assert.Equal(t, []string{"start:pool", "start:cache", "stop:cache", "stop:pool"}, rec.list())
	assert.NoError(t, srv.Shutdown(context.Background()), "repeated shutdown is a no-op")
	assert.Len(t, rec.list(), 4)
}

func TestRun_StartHookFailurePreventsListening(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	boom := errors.New("database unreachable")
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithStartHook(rec.hook("start:pool", boom)),
		httpserver.WithStartHook(rec.hook("start:never", nil)),
		httpserver.WithStopHook(rec.hook("stop:pool", nil)),
	)

	err := srv.Run(context.Background(), okHandler())

	require.Error(t, err)
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.ErrorIs(t, err, httpserver.ErrStartHook)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, srv.Addr())
	assert.Equal(t, []string{"start:pool", "stop:pool"}, rec.list())
}

func TestRun_ListenFailure(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := httpserver.New(httpserver.WithAddr(ln.Addr().String()))
	err = srv.Run(context.Background(), okHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestRun_Twice(t *testing.T) {
	t.Parallel()
	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, okHandler()) }()
	waitReady(t, srv)

	err := srv.Run(ctx, okHandler())
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, <-done)
}

func TestShutdown_StopHookError(t *testing.T) {
	t.Parallel()
	closeErr := errors.New("pool close failed")
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithStopHook(func(context.Context, *slog.Logger) error { return closeErr }),
	)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), okHandler()) }()
	waitReady(t, srv)

	err := srv.Shutdown(context.Background())
	assert.ErrorIs(t, err, httpserver.ErrShutdown)
	assert.ErrorIs(t, err, closeErr)

	runErr := <-done
	assert.ErrorIs(t, runErr, closeErr)
}

func TestShutdown_BeforeRun(t *testing.T) {
	t.Parallel()
	srv := httpserver.New()
	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.Empty(t, srv.Addr())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	srv := httpserver.NewFromConfig(httpserver.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()
	addr := waitReady(t, srv)

	resp, err := http.Get("http://" + addr + "/anything")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "nil handler serves 404")

	cancel()
	require.NoError(t, <-done)
}

func TestOptionsPanicOnInvalidValues(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(-time.Second) })
	assert.Panics(t, func() { httpserver.WithStartHook(nil) })
	assert.Panics(t, func() { httpserver.WithStopHook(nil) })
}
