package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger and takes fields as alternating key/value
// pairs, e.g. logger.Info("slots computed", "pdisk", id, "count", n).
type Logger struct {
	zl zerolog.Logger
}

var global = NewDevelopment()

// NewDevelopment creates a console logger on stdout at debug level.
func NewDevelopment() *Logger {
	return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, zerolog.DebugLevel)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// SetGlobal replaces the global logger.
func SetGlobal(logger *Logger) {
	global = logger
}

// Global returns the global logger.
func Global() *Logger {
	return global
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	write(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	write(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	write(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	write(l.zl.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	write(l.zl.Fatal(), msg, fields)
}

// With returns a child logger carrying fields on every entry.
func (l *Logger) With(fields ...interface{}) *Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fieldValue(fields[i+1]))
	}
	return &Logger{zl: ctx.Logger()}
}

// WithContext returns a child logger carrying the request id of ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := RequestID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

// Level returns the minimum level the logger writes.
func (l *Logger) Level() zerolog.Level {
	return l.zl.GetLevel()
}

func write(e *zerolog.Event, msg string, fields []interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		e.Interface(key, fieldValue(fields[i+1]))
	}
	e.Msg(msg)
}

// fieldValue flattens errors to their message; zerolog would otherwise
// encode most error types as an empty object.
func fieldValue(v interface{}) interface{} {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}
