// Package logger defines the leveled logging interface shared by the SDK and
// the CLI, with a slog text implementation and a zerolog JSON implementation.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger is implemented by every logger the SDK accepts. The plain variants
// take alternating key/value attributes.
type Logger interface {
	Debug(msg string, args ...any)
	Debugf(format string, args ...any)

	Info(msg string, args ...any)
	Infof(format string, args ...any)

	Warn(msg string, args ...any)
	Warnf(format string, args ...any)

	Error(msg string, args ...any)
	Errorf(format string, args ...any)
}

// NoopLogger discards everything. It is the SDK default.
type NoopLogger struct{}

func (l NoopLogger) Debug(msg string, args ...any)     {}
func (l NoopLogger) Debugf(format string, args ...any) {}
func (l NoopLogger) Info(msg string, args ...any)      {}
func (l NoopLogger) Infof(format string, args ...any)  {}
func (l NoopLogger) Warn(msg string, args ...any)      {}
func (l NoopLogger) Warnf(format string, args ...any)  {}
func (l NoopLogger) Error(msg string, args ...any)     {}
func (l NoopLogger) Errorf(format string, args ...any) {}

// New returns a logger writing to stderr in the given format ("text" or
// "json"). Debug messages are only emitted when debug is true.
func New(debug bool, format string) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewDefaultLogger(debug), nil
	case FormatJSON:
		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		}
		return NewZerologLogger(os.Stderr, level), nil
	}
	return nil, fmt.Errorf("unknown log format %q (expected %q or %q)", format, FormatText, FormatJSON)
}

// SlogLogger adapts a log/slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a text logger on stderr at the given level.
func NewSlogLogger(level slog.Level) *SlogLogger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(handler)}
}

// NewDefaultLogger logs at Debug level when debug is set and at Info level
// otherwise.
func NewDefaultLogger(debug bool) Logger {
	if debug {
		return NewSlogLogger(slog.LevelDebug)
	}
	return NewSlogLogger(slog.LevelInfo)
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.logger.Debug(sprintf(format, args...))
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.logger.Info(sprintf(format, args...))
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Warnf(format string, args ...any) {
	l.logger.Warn(sprintf(format, args...))
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) Errorf(format string, args ...any) {
	l.logger.Error(sprintf(format, args...))
}

// ZerologLogger writes one JSON object per message.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a JSON logger on out that drops messages below
// level.
func NewZerologLogger(out io.Writer, level zerolog.Level) *ZerologLogger {
	return &ZerologLogger{logger: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

func (l *ZerologLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Fields(fields(args)).Msg(msg)
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msg(sprintf(format, args...))
}

func (l *ZerologLogger) Info(msg string, args ...any) {
	l.logger.Info().Fields(fields(args)).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.logger.Info().Msg(sprintf(format, args...))
}

func (l *ZerologLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Fields(fields(args)).Msg(msg)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.logger.Warn().Msg(sprintf(format, args...))
}

func (l *ZerologLogger) Error(msg string, args ...any) {
	l.logger.Error().Fields(fields(args)).Msg(msg)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msg(sprintf(format, args...))
}

// fields pairs up slog-style key/value arguments. A trailing key without a
// value and non-string keys are dropped.
func fields(args []any) map[string]any {
	out := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			out[key] = args[i+1]
		}
	}
	return out
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
