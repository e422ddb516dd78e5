package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/weatherapp/pkg/logger"
)

type config struct {
	addr              string
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	logger            *slog.Logger
	startHooks        []Hook
	stopHooks         []Hook
}

func defaultConfig() *config {
	return &config{
		addr:              ":8080",
		readHeaderTimeout: 10 * time.Second,
		shutdownTimeout:   10 * time.Second,
		logger:            logger.Noop(),
	}
}

// Server wraps http.Server with lifecycle hooks, graceful shutdown and logging.
type Server struct {
	cfg   *config
	log   *slog.Logger
	ready chan struct{}

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener

	stopMu  sync.Mutex
	stopped bool
	stopErr error
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{
		cfg:   cfg,
		log:   cfg.logger.With(logger.Component("httpserver")),
		ready: make(chan struct{}),
	}
}

// Run executes the start hooks, listens and serves handler until ctx is
// cancelled, SIGINT/SIGTERM arrives or Shutdown is called. Stop hooks run
// exactly once on the way out.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	srv := &http.Server{
		Addr:              s.cfg.addr,
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.srv = srv
	s.mu.Unlock()

	for _, h := range s.cfg.startHooks {
		if err := h(ctx, s.cfg.logger); err != nil {
			s.log.ErrorContext(ctx, "startup aborted", logger.Error(err))
			return errors.Join(ErrStart, ErrStartHook, err, s.Shutdown(context.WithoutCancel(ctx)))
		}
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Join(ErrStart, err, s.Shutdown(context.WithoutCancel(ctx)))
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)

	s.log.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr, shutdownErr error
	select {
	case <-ctx.Done():
		shutdownErr = s.Shutdown(context.WithoutCancel(ctx))
		runErr = <-errCh
	case sig := <-stop:
		s.log.InfoContext(ctx, "shutdown signal received", slog.String("signal", sig.String()))
		shutdownErr = s.Shutdown(context.WithoutCancel(ctx))
		runErr = <-errCh
	case runErr = <-errCh:
		shutdownErr = s.Shutdown(context.WithoutCancel(ctx))
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr, shutdownErr)
	}
	return shutdownErr
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address, or "" before the server listens.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown drains in-flight requests within the shutdown timeout and then
// runs the stop hooks in reverse registration order. It is a no-op before
// Run; repeated calls return the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil || s.stopped {
		return s.stopErr
	}
	s.stopped = true

	ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = append(errs, err)
	}
	for i := len(s.cfg.stopHooks) - 1; i >= 0; i-- {
		if err := s.cfg.stopHooks[i](ctx, s.cfg.logger); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.stopErr = errors.Join(append([]error{ErrShutdown}, errs...)...)
		s.log.ErrorContext(ctx, "http server stopped with errors", logger.Error(s.stopErr))
		return s.stopErr
	}
	s.log.InfoContext(ctx, "http server stopped")
	return nil
}
