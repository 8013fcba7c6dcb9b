package moisturelog

import (
	"github.com/bft-labs/moisturelog/internal/domain"
)

// State is the lifecycle state of a Bridge.
type State int

const (
	// StateStopped means the bridge is idle and may be started.
	StateStopped State = iota
	// StateStarting means the device is open and the loop is launching.
	StateStarting
	// StateRunning means frames are being acquired.
	StateRunning
	// StateStopping means Stop was called or the input ended.
	StateStopping
	// StateCrashed means the loop ended with an error. Start may be retried.
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// Reading is one validated sensor frame.
type Reading = domain.Reading

// Record is one stored entry of the log document.
type Record = domain.Record

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// RecordStoredEvent is emitted after a reading was persisted.
type RecordStoredEvent struct {
	Reading Reading
	// Records is the number of records in the document after the append.
	Records int
}

// ParseErrorEvent is emitted for a frame that was rejected.
type ParseErrorEvent struct {
	Line  string
	Error error
}

// StoreErrorEvent is emitted when a valid reading could not be persisted.
type StoreErrorEvent struct {
	Reading Reading
	Error   error
}

// EventHandler receives bridge events. Methods are called synchronously
// from the acquisition goroutine and should return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnRecordStored(RecordStoredEvent)
	OnParseError(ParseErrorEvent)
	OnStoreError(StoreErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)   {}
func (BaseEventHandler) OnRecordStored(RecordStoredEvent) {}
func (BaseEventHandler) OnParseError(ParseErrorEvent)     {}
func (BaseEventHandler) OnStoreError(StoreErrorEvent)     {}
