package log

import (
	"io"

	"github.com/rs/zerolog"

	logAdapter "github.com/bft-labs/moisturelog/internal/adapters/log"
	"github.com/bft-labs/moisturelog/internal/ports"
)

// Logger provides structured logging capabilities.
type Logger = ports.Logger

// Field is a key-value pair attached to a log message.
type Field = ports.Field

// NewConsole returns a logger writing human-readable lines to w at the named
// level (debug, info, warn, error). Unknown levels mean info.
func NewConsole(w io.Writer, level string) Logger {
	a := logAdapter.NewZerologAdapterWithWriter(w)
	return logAdapter.NewZerologAdapterWithLogger(a.Logger().Level(logAdapter.ParseLevel(level)))
}

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(logger zerolog.Logger) Logger {
	return logAdapter.NewZerologAdapterWithLogger(logger)
}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return logAdapter.NewNoopLogger()
}
