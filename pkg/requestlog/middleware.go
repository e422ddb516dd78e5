package requestlog

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/weatherapp/pkg/clientip"
	"github.com/dmitrymomot/weatherapp/pkg/logger"
)

// Option configures the middleware.
type Option func(*options)

type options struct {
	log          *slog.Logger
	snippetLimit int
}

// WithLogger sets the destination logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithSnippetLimit changes how many characters of a JSON body are logged.
func WithSnippetLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.snippetLimit = n
		}
	}
}

// Middleware times every request, stamps X-Process-Time and logs one line
// per request. JSON response bodies are pretty-printed into the log line and
// delivered to the client unchanged. A panic in next is logged and re-raised.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	o := options{log: logger.Noop(), snippetLimit: DefaultSnippetLimit}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With(logger.Component("http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			client := clientip.Host(r)
			cw := newCaptureWriter(w, start)

			defer func() {
				if rec := recover(); rec != nil {
					if rec != http.ErrAbortHandler {
						log.ErrorContext(r.Context(), "request failed",
							logger.Method(r.Method),
							logger.Path(r.URL.Path),
							slog.String("error", fmt.Sprint(rec)),
							logger.ProcessTime(time.Since(start)),
							logger.ClientHost(client),
						)
					}
					panic(rec)
				}
			}()

			next.ServeHTTP(cw, r)

			snippet, err := cw.finish(o.snippetLimit)
			elapsed := time.Since(start)

			attrs := []slog.Attr{
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Status(cw.status),
				logger.ProcessTime(elapsed),
				logger.ClientHost(client),
			}
			switch {
			case err != nil:
				attrs = append(attrs, slog.String("body", fmt.Sprintf("[Error reading body: %v]", err)))
				log.LogAttrs(r.Context(), slog.LevelWarn, "request completed", attrs...)
				return
			case snippet != "":
				attrs = append(attrs, slog.String("body", snippet))
			}
			log.LogAttrs(r.Context(), slog.LevelInfo, "request completed", attrs...)
		})
	}
}
