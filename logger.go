package rowan

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// loggerPtr stores the active logger. Accessed atomically so that SetLogger
// can be called while a worker goroutine is logging.
var loggerPtr atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.Nop()
	loggerPtr.Store(&l)
}

// SetLogger configures the logger used by rowan. By default rowan produces no
// log output. Pass nil to restore the silent default.
//
// Levels used:
//   - Debug: per-tick stats in debug mode, re-entrant dispatch fallbacks
//   - Warn: unknown control opcodes, tree shape warnings
//   - Error: a component failed while receiving an event
func SetLogger(l *zerolog.Logger) {
	if l == nil {
		nop := zerolog.Nop()
		l = &nop
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *zerolog.Logger {
	return loggerPtr.Load()
}

// NewLogger returns a JSON logger writing to w at the given level, with
// timestamps.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewConsoleLogger returns a human-readable logger writing to stderr.
func NewConsoleLogger(level zerolog.Level) zerolog.Logger {
	return NewLogger(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}
