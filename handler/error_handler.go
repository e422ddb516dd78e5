package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/weatherapp/pkg/environment"
	"github.com/dmitrymomot/weatherapp/pkg/logger"
)

// NewErrorHandler logs a failed request and answers with a 500 error envelope.
// In development the envelope data carries the error text.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = logger.Noop()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		log.LogAttrs(r.Context(), slog.LevelError, "request error",
			logger.Error(err),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(http.StatusInternalServerError),
		)
		var opts []EnvelopeOption
		if ctx.Environment() == environment.Development {
			opts = append(opts, WithData(map[string]string{"error": err.Error()}))
		}
		if renderErr := Error("Internal server error", opts...).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error envelope", logger.Error(renderErr))
		}
	}
}
