// Package logger builds *slog.Logger instances and provides attribute helpers with
// consistent keys for state machine logging.
//
// New applies a set of Option values (format, level, output, static attributes and
// context extractors) and wraps the chosen slog handler in LogHandlerDecorator, which
// injects attributes pulled from the context on every call.
//
// # Usage
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "turnstile"))
//	log.InfoContext(ctx, "state changed",
//	    logger.Machine("turnstile"),
//	    logger.FromState("locked"),
//	    logger.ToState("unlocked"),
//	)
//
// Error and EventID return an empty slog.Attr for nil input, so they can be passed
// unconditionally.
package logger
