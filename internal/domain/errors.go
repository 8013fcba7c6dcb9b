package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the moisturelog domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("moisturelog: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("moisturelog: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("moisturelog: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("moisturelog: invalid configuration")

	// ErrDevice is returned when the input device cannot be opened or configured.
	ErrDevice = errors.New("moisturelog: device unavailable")

	// ErrPersist is returned when the log document cannot be written.
	ErrPersist = errors.New("moisturelog: persist failed")
)

// Frame parse errors. A *ParseError wraps exactly one of these.
var (
	// ErrMissingMarker means one of the MOISTURE:, RELAY:, THRESHOLD: markers is absent.
	ErrMissingMarker = errors.New("missing marker")

	// ErrUndelimitedField means a comma-delimited field has no terminating comma.
	ErrUndelimitedField = errors.New("field not comma delimited")

	// ErrInvalidRelay means the relay value is anything other than "0" or "1".
	ErrInvalidRelay = errors.New("invalid relay value")
)

// ParseError reports why a frame line could not be turned into a Reading.
type ParseError struct {
	// Field is the marker that was at fault (e.g. "MOISTURE").
	Field string
	// Line is the offending raw line.
	Line string
	// Value is the raw captured value, when the failure concerns a value.
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("parse %s: %v %q: %q", e.Field, e.Err, e.Value, e.Line)
	}
	return fmt.Sprintf("parse %s: %v: %q", e.Field, e.Err, e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }
