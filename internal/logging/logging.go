package logging

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
)

const ErrorKey string = "error"
const loggerKey string = "logger"
const logAttributesNumber = 8 // Preallocate for common attributes. Go will reallocate if more is added to the slice.

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options controls how NewLogger builds the process logger.
type Options struct {
	Writer io.Writer
	Level  string // debug, info, warn, error (default info)
	Format string // json (default) or text
}

// NewLogger creates a new logger and sets it as the default slog logger.
// JSON output is meant for production; the text format uses tint for
// coloured local development output.
func NewLogger(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	if strings.EqualFold(opts.Format, FormatText) {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level, falling back to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestLogger is a middleware that creates a request-scoped logger with the request ID
// and stores it in the context for use by all downstream handlers and layers.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetReqID(r.Context())
			log := logger.With(slog.String("request_id", requestID))
			ctx := context.WithValue(r.Context(), loggerKey, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the request-scoped logger from context.
// If no logger is found, returns the default slog logger.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}

// NewContextWithLogger creates a new context with the given logger attached.
// Useful for tests or background jobs where there's no HTTP request.
func NewContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LogBuilder provides a fluent API for building structured log entries.
// It reduces verbosity by eliminating repeated slog.String() calls inside log.Error, log.Warn, and log.Info functions.
type LogBuilder struct {
	logger *slog.Logger
	attrs  []any
}

// Log creates a LogBuilder from context, extracting the request-scoped logger.
func Log(ctx context.Context) *LogBuilder {
	return &LogBuilder{
		logger: FromContext(ctx),
		attrs:  make([]any, 0, logAttributesNumber),
	}
}

// With creates a LogBuilder from an existing slog.Logger.
func With(logger *slog.Logger) *LogBuilder {
	return &LogBuilder{
		logger: logger,
		attrs:  make([]any, 0, logAttributesNumber),
	}
}

// Layer adds the "layer" field (e.g., "routes", "handler", "store").
func (b *LogBuilder) Layer(layer string) *LogBuilder {
	b.attrs = append(b.attrs, slog.String("layer", layer))
	return b
}

// Op adds the "operation" field (e.g., "toggleFavourite", "login").
func (b *LogBuilder) Op(operation string) *LogBuilder {
	b.attrs = append(b.attrs, slog.String("operation", operation))
	return b
}

// User adds the "user_id" field.
func (b *LogBuilder) User(userID string) *LogBuilder {
	b.attrs = append(b.attrs, slog.String("user_id", userID))
	return b
}

// Character adds the "character_id" field.
func (b *LogBuilder) Character(characterID int) *LogBuilder {
	b.attrs = append(b.attrs, slog.Int("character_id", characterID))
	return b
}

// Characters adds the "character_ids" field.
func (b *LogBuilder) Characters(characterIDs []int) *LogBuilder {
	b.attrs = append(b.attrs, slog.Any("character_ids", characterIDs))
	return b
}

// Key adds the "storage_key" field.
func (b *LogBuilder) Key(key string) *LogBuilder {
	b.attrs = append(b.attrs, slog.String("storage_key", key))
	return b
}

// Str adds a custom string field.
func (b *LogBuilder) Str(key, value string) *LogBuilder {
	b.attrs = append(b.attrs, slog.String(key, value))
	return b
}

// Int adds a custom int field.
func (b *LogBuilder) Int(key string, value int) *LogBuilder {
	b.attrs = append(b.attrs, slog.Int(key, value))
	return b
}

// Duration adds a custom duration field.
func (b *LogBuilder) Duration(key string, value time.Duration) *LogBuilder {
	b.attrs = append(b.attrs, slog.Duration(key, value))
	return b
}

// Bool adds a custom bool field.
func (b *LogBuilder) Bool(key string, value bool) *LogBuilder {
	b.attrs = append(b.attrs, slog.Bool(key, value))
	return b
}

// Any adds a custom field of any type.
func (b *LogBuilder) Any(key string, value any) *LogBuilder {
	b.attrs = append(b.attrs, slog.Any(key, value))
	return b
}

// Err adds the "error" field from an error.
func (b *LogBuilder) Err(err error) *LogBuilder {
	if err != nil {
		b.attrs = append(b.attrs, slog.String(ErrorKey, err.Error()))
	}
	return b
}

// Info logs at INFO level.
func (b *LogBuilder) Info(msg string) {
	b.logger.Info(msg, b.attrs...)
}

// Warn logs at WARN level.
func (b *LogBuilder) Warn(msg string) {
	b.logger.Warn(msg, b.attrs...)
}

// Error logs at ERROR level.
func (b *LogBuilder) Error(msg string) {
	b.logger.Error(msg, b.attrs...)
}

// Debug logs at DEBUG level.
func (b *LogBuilder) Debug(msg string) {
	b.logger.Debug(msg, b.attrs...)
}
