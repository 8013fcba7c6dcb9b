package moisturelog

import (
	"io"
	"time"

	"github.com/bft-labs/moisturelog/internal/ports"
	"github.com/bft-labs/moisturelog/pkg/log"
)

// ByteSource is a non-blocking byte stream: Read returns 0, nil when no
// data is available and io.EOF when the stream has ended.
type ByteSource = ports.ByteSource

// DocumentStorage loads and saves the whole log document.
type DocumentStorage = ports.DocumentStorage

// Option configures optional behavior of a Bridge.
type Option func(*options)

type options struct {
	logger       log.Logger
	source       ByteSource
	storage      DocumentStorage
	eventHandler EventHandler
	echo         io.Writer
	clock        func() time.Time
}

func defaultOptions() options {
	return options{
		logger: log.Noop(),
		clock:  time.Now,
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithByteSource replaces the serial device. Start then opens nothing and
// the bridge stops by itself once src returns io.EOF.
func WithByteSource(src ByteSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithStorage replaces the document file named by Config.DataFile.
func WithStorage(storage DocumentStorage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithEventHandler sets a handler for bridge events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithEcho writes the full document to w after every successful save.
func WithEcho(w io.Writer) Option {
	return func(o *options) {
		o.echo = w
	}
}

// WithClock sets the time source for sync timing and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}
