package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTint = "tint"
)

// Logger represents application logger.
type Logger struct {
	*slog.Logger
}

type options struct {
	format string
	writer io.Writer
}

// Option configures the logger output.
type Option func(*options)

// WithFormat selects text, json or tint output. Unknown formats fall back to text.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithWriter redirects output, os.Stdout by default.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New creates new Logger instance with the specified level.
func New(level int, opts ...Option) *Logger {
	o := options{format: FormatText, writer: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	var handler slog.Handler
	switch o.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(o.writer, &slog.HandlerOptions{Level: slog.Level(level)})
	case FormatTint:
		handler = tint.NewHandler(o.writer, &tint.Options{Level: slog.Level(level), TimeFormat: time.DateTime})
	default:
		handler = slog.NewTextHandler(o.writer, &slog.HandlerOptions{Level: slog.Level(level)})
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// With returns a Logger that includes the given attributes in each record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
