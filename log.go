package markup

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var (
	slogCtxKey = ctxKey{}
)

// Logger returns the *slog.Logger stored in ctx by LoggingContext. If there
// isn't one, everything logged to the returned logger is discarded.
func Logger(ctx context.Context) *slog.Logger {
	val := ctx.Value(slogCtxKey)
	if val == nil {
		return slog.New(slog.DiscardHandler)
	}
	logger, ok := val.(*slog.Logger)
	if !ok || logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// LoggingContext returns a copy of ctx that carries logger. Renderers,
// handlers, and navigators log to the logger found in the context they're
// given.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, slogCtxKey, logger)
}
