// Package httpserver runs the service's http.Server with ordered lifecycle
// hooks and graceful shutdown.
//
// Start hooks run before the listener opens, so a failing dependency (for
// example the database pool) keeps the process from accepting traffic. Stop
// hooks run once, in reverse order, after in-flight requests have drained or
// the shutdown timeout expired.
//
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithStartHook(func(ctx context.Context, _ *slog.Logger) error { return pool.Create(ctx) }),
//	    httpserver.WithStopHook(func(context.Context, *slog.Logger) error { pool.Close(); return nil }),
//	)
//	if err := srv.Run(ctx, handler); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
package httpserver
