package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a small value wrapper around slog that carries the component,
// file and function it is logging for. Every method that returns an error also
// logs it, so call sites can `return log.Err(...)` in one line.
type Logger struct {
	log       *slog.Logger
	component string
	file      string
	function  string
}

func New(component string) Logger {
	return Logger{component: component}
}

// Setup installs the process-wide slog handler. Development gets readable text
// output; every other environment gets JSON.
func Setup(environment, level string) {
	SetupWriter(os.Stdout, environment, level)
}

func SetupWriter(w io.Writer, environment, level string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

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

func (l Logger) File(file string) Logger {
	l.file = file
	return l
}

func (l Logger) Function(function string) Logger {
	l.function = function
	return l
}

func (l Logger) With(args ...any) Logger {
	l.log = l.slog().With(args...)
	return l
}

func (l Logger) Debug(msg string, args ...any) {
	l.slog().Debug(msg, l.attrs(args)...)
}

func (l Logger) Info(msg string, args ...any) {
	l.slog().Info(msg, l.attrs(args)...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.slog().Warn(msg, l.attrs(args)...)
}

// Er logs err without returning it.
func (l Logger) Er(msg string, err error, args ...any) {
	l.slog().Error(msg, l.attrs(append(args, "error", err))...)
}

// ErMsg logs an error-level message without an underlying error.
func (l Logger) ErMsg(msg string, args ...any) {
	l.slog().Error(msg, l.attrs(args)...)
}

// Err logs err and returns it wrapped with msg.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.Er(msg, err, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs msg and returns it as a new error.
func (l Logger) Error(msg string, args ...any) error {
	l.ErMsg(msg, args...)
	return errors.New(msg)
}

func (l Logger) ErrMsg(msg string) error {
	return l.Error(msg)
}

// slog resolves the default handler lazily so loggers built before Setup still
// follow it.
func (l Logger) slog() *slog.Logger {
	if l.log == nil {
		return slog.Default()
	}
	return l.log
}

func (l Logger) attrs(args []any) []any {
	attrs := make([]any, 0, len(args)+6)
	if l.component != "" {
		attrs = append(attrs, "component", l.component)
	}
	if l.file != "" {
		attrs = append(attrs, "file", l.file)
	}
	if l.function != "" {
		attrs = append(attrs, "function", l.function)
	}
	return append(attrs, args...)
}
