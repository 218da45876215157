package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options selects the level, encoding and destination of the service log.
// It mirrors config.LoggingConfig so this package stays free of config imports.
type Options struct {
	Level     string
	Format    string // json (default) or console
	Output    string // stdout (default) or file
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

type contextKey string

const (
	loggerKey        contextKey = "logger"
	correlationIDKey contextKey = "correlation_id"
)

// stdout is the console destination; tests replace it.
var stdout io.Writer = os.Stdout

// New creates a zerolog.Logger with the specified level and JSON output.
// If the level string is invalid, it defaults to info.
func New(level string) zerolog.Logger {
	return build(stdout, level)
}

// NewFromOptions creates a zerolog.Logger writing to stdout or a rotating
// file, encoded as JSON or as human-readable console lines. File output
// without a path falls back to stdout with a warning.
func NewFromOptions(opts Options) zerolog.Logger {
	var w io.Writer = stdout
	missingPath := opts.Output == "file" && opts.FilePath == ""
	if opts.Output == "file" && !missingPath {
		w = NewFileWriter(FileConfig{
			Path:      opts.FilePath,
			MaxSizeMB: opts.MaxSizeMB,
			MaxFiles:  opts.MaxFiles,
		})
	}

	if opts.Format == "console" || opts.Format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	log := build(w, opts.Level)
	if missingPath {
		log.Warn().Msg("file log output requested without a file path; logging to stdout")
	}
	return log
}

func build(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "notification-service").
		Logger()
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithCorrelationID stores a correlation ID in the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext returns the correlation ID, or "" if none is set.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the request-scoped logger with the correlation ID
// attached. Falls back to an info-level stdout logger.
func FromContext(ctx context.Context) zerolog.Logger {
	var log zerolog.Logger

	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		log = l
	} else {
		log = New("info")
	}

	if id := CorrelationIDFromContext(ctx); id != "" {
		log = log.With().Str("correlation_id", id).Logger()
	}

	return log
}

// NewCorrelationID generates a new UUID-based correlation ID.
func NewCorrelationID() string {
	return uuid.NewString()
}
