// Package logger builds *slog.Logger instances for the auth services.
//
// New assembles a JSON or text handler from functional options and wraps it
// with LogHandlerDecorator, which pulls request-scoped attributes (request id,
// environment, authenticated user) from the context on every record.
//
// Attribute helpers in attr.go keep key names consistent across packages:
//
//	log.WarnContext(ctx, "skipping corrupt user record",
//	    logger.Component("userstore"),
//	    logger.Path(path),
//	    logger.Line(n),
//	    logger.Error(err),
//	)
//
// Secrets never go into logs as-is: SessionID and Redact truncate values that
// act as bearer credentials or password hashes.
//
// Binaries configure the logger from the environment:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(logger.FromConfig(cfg)...)
//	logger.SetAsDefault(log)
package logger
