// Package logger builds the service's *slog.Logger.
//
// New takes functional options: output format (text or json), minimum level,
// static attributes and ContextExtractor callbacks that pull request-scoped
// values such as the request id out of context.Context on
// every log call. WithEnvironment picks the preset for the deployment
// environment and WithConfig applies LOG_LEVEL / LOG_FORMAT overrides on top.
//
// Attribute helpers in attr.go (Method, Path, Status, ClientHost,
// ProcessTime, Error...) keep key names consistent between the request log and
// the rest of the service.
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Development, "weatherapp"),
//	    logger.WithConfig(logger.Config{Level: "info"}),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "request completed", logger.Status(200), logger.ProcessTime(elapsed))
package logger
