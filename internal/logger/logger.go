// Package logger provides a thin wrapper around zerolog.Logger with
// convenience constructors and context helpers used across the
// messagely API server.
//
// The Logger type embeds zerolog.Logger, so the full zerolog API is
// available directly. Handlers obtain request-scoped loggers via
// FromRequest; lower layers use FromContext.
package logger

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// New constructs a JSON stdout logger tagged with the given role label
// (e.g. "server", "migrate").
func New(role string) *Logger {
	l := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a *Logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithContext returns a copy of ctx carrying this logger, retrievable
// with FromContext.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext extracts the logger stored in ctx by WithContext. When
// none is present zerolog falls back to its global logger, so the
// result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest extracts the request-scoped logger attached by the
// request-logging middleware.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
