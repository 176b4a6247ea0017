// Package log wraps log/slog with the configuration presets and error
// helpers used across gsms.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	gerrors "github.com/gsms/gsms/internal/errors"
)

// Logger is a *slog.Logger that remembers its Config and knows how to
// flatten a GSMSError into attributes.
type Logger struct {
	*slog.Logger
	config Config
}

// New builds a Logger writing to config.Output.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}
	w := config.writer()

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if config.Format == FormatText {
		h = slog.NewTextHandler(w, opts)
	}

	var attrs []any
	if config.ServiceName != "" {
		attrs = append(attrs, "service", config.ServiceName)
	}
	if config.ServiceVersion != "" {
		attrs = append(attrs, "version", config.ServiceVersion)
	}
	return &Logger{Logger: slog.New(h).With(attrs...), config: config}
}

// Default logs JSON at info level to stderr.
func Default() *Logger { return New(DefaultConfig()) }

// Development logs text at debug level with source locations.
func Development() *Logger { return New(DevelopmentConfig()) }

// Discard drops everything.
func Discard() *Logger {
	cfg := DefaultConfig()
	cfg.Output = io.Discard
	return New(cfg)
}

func (l *Logger) derive(s *slog.Logger) *Logger {
	return &Logger{Logger: s, config: l.config}
}

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger { return l.derive(l.Logger.With(args...)) }

// WithGroup returns a Logger that nests subsequent attributes under name.
func (l *Logger) WithGroup(name string) *Logger { return l.derive(l.Logger.WithGroup(name)) }

// WithError attaches err. A GSMSError anywhere in the chain contributes
// error_code, suggestions, docs_url and cause.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With(errorArgs(err, "error")...)
}

// LogError logs err at error level.
func (l *Logger) LogError(err error) {
	l.LogErrorContext(context.Background(), err)
}

// LogErrorContext logs err at error level.
func (l *Logger) LogErrorContext(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.ErrorContext(ctx, "operation failed", errorArgs(err, "error_message")...)
}

func errorArgs(err error, messageKey string) []any {
	var ge *gerrors.GSMSError
	if !errors.As(err, &ge) {
		return []any{messageKey, err.Error()}
	}

	args := []any{messageKey, ge.Message, "error_code", string(ge.Code)}
	if len(ge.Suggestions) > 0 {
		args = append(args, "suggestions", ge.Suggestions)
	}
	if ge.DocsURL != "" {
		args = append(args, "docs_url", ge.DocsURL)
	}
	if ge.Cause != nil {
		args = append(args, "cause", ge.Cause.Error())
	}
	return args
}

// Enabled reports whether records at level would be written.
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.Logger.Enabled(ctx, level.ToSlogLevel())
}

// Slog returns the underlying *slog.Logger.
func (l *Logger) Slog() *slog.Logger { return l.Logger }

func (l *Logger) Config() Config { return l.config }

// Close closes a rotating log file. Other outputs are left open.
func (l *Logger) Close() error { return l.config.close() }

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger replaces the logger packages fall back to when none
// is injected. nil resets it.
func SetDefaultLogger(l *Logger) { defaultLogger.Store(l) }

// DefaultLogger returns the fallback logger, creating Default() on first
// use.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, Default())
	return defaultLogger.Load()
}
