package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/weatherapp/handler"
	"github.com/dmitrymomot/weatherapp/pkg/logger"
)

// Database is the part of the pool manager the routes depend on.
type Database interface {
	Version(ctx context.Context) (string, error)
}

// AppInfo describes the running service on the home page.
type AppInfo struct {
	Title       string
	Description string
	Version     string
	Environment string
}

// RouterOptions configures the web module. Database is required; Cache is
// checked by /health only when set.
type RouterOptions struct {
	Info         AppInfo
	Database     Database
	Cache        func(context.Context) error
	Logger       *slog.Logger
	ErrorHandler handler.ErrorHandler[handler.Context]
}

// Router mounts the home page, the health check and the envelope-shaped
// fallbacks for unknown routes and methods.
//
//	r := chi.NewRouter()
//	r.Mount("/", web.Router(web.RouterOptions{Info: info, Database: pool}))
func Router(opts RouterOptions) chi.Router {
	s := newService(opts)
	r := chi.NewRouter()

	r.NotFound(handler.Wrap(s.notFound, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler)))
	r.MethodNotAllowed(handler.Wrap(s.methodNotAllowed, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler)))

	r.Get("/", handler.Wrap(s.home, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler)))
	r.Get("/health", handler.Wrap(s.health, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler)))

	return r
}

type service struct {
	info         AppInfo
	db           Database
	cache        func(context.Context) error
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func newService(opts RouterOptions) *service {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	errorHandler := opts.ErrorHandler
	if errorHandler == nil {
		errorHandler = handler.NewErrorHandler(log)
	}
	return &service{
		info:         opts.Info,
		db:           opts.Database,
		cache:        opts.Cache,
		log:          log.With(logger.Component("web")),
		errorHandler: errorHandler,
	}
}

func (s *service) notFound(handler.Context, struct{}) handler.Response {
	return handler.NotFound()
}

func (s *service) methodNotAllowed(handler.Context, struct{}) handler.Response {
	return handler.NewEnvelope(http.StatusMethodNotAllowed, "Method not allowed", nil)
}
