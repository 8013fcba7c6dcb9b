package moisturelog

import "github.com/bft-labs/moisturelog/internal/domain"

// Errors returned by the bridge. Match them with errors.Is.
var (
	ErrAlreadyRunning   = domain.ErrAlreadyRunning
	ErrNotRunning       = domain.ErrNotRunning
	ErrShutdownTimeout  = domain.ErrShutdownTimeout
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrDevice           = domain.ErrDevice
	ErrPersist          = domain.ErrPersist
	ErrMissingMarker    = domain.ErrMissingMarker
	ErrUndelimitedField = domain.ErrUndelimitedField
	ErrInvalidRelay     = domain.ErrInvalidRelay
)

// ParseError reports why a frame was rejected.
type ParseError = domain.ParseError
