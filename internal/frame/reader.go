package frame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bft-labs/moisturelog/internal/ports"
)

const (
	// MaxLineLength is the number of bytes kept per line; the rest is dropped.
	MaxLineLength = 255

	// DefaultSyncWindow is how long after start lines are treated as device
	// start-up noise.
	DefaultSyncWindow = 2 * time.Second

	// DefaultIdleInterval is the wait before retrying an empty read.
	DefaultIdleInterval = 100 * time.Millisecond

	readChunk = 64
)

// SyncState is the one-shot start-up gate of a Reader.
type SyncState int

const (
	// Syncing drops every line until the sync window has elapsed.
	Syncing SyncState = iota
	// Synced passes every line. A reader never leaves this state.
	Synced
)

// String returns a human-readable representation of the state.
func (s SyncState) String() string {
	switch s {
	case Syncing:
		return "Syncing"
	case Synced:
		return "Synced"
	default:
		return "Unknown"
	}
}

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Stats counts what a Reader did with the lines it saw.
type Stats struct {
	Lines         uint64 // lines handed to the caller
	SyncDiscarded uint64 // lines dropped inside the sync window
	Empty         uint64 // terminators with nothing before them
	Truncated     uint64 // lines longer than the bound
}

// Reader assembles lines from a ports.ByteSource.
// It is not safe for concurrent use.
type Reader struct {
	src    ports.ByteSource
	logger ports.Logger
	now    Clock
	sleep  Sleeper

	syncWindow time.Duration
	idle       time.Duration
	maxLine    int

	start time.Time
	state SyncState

	line     []byte
	overflow bool

	buf     []byte
	pos, n  int
	pending error

	stats Stats
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithSyncWindow overrides DefaultSyncWindow.
func WithSyncWindow(d time.Duration) ReaderOption {
	return func(r *Reader) { r.syncWindow = d }
}

// WithIdleInterval overrides DefaultIdleInterval.
func WithIdleInterval(d time.Duration) ReaderOption {
	return func(r *Reader) { r.idle = d }
}

// WithClock sets the time source used for the sync window.
func WithClock(c Clock) ReaderOption {
	return func(r *Reader) { r.now = c }
}

// WithSleeper sets how the reader waits on an idle stream.
func WithSleeper(s Sleeper) ReaderOption {
	return func(r *Reader) { r.sleep = s }
}

// WithLogger sets the logger; frames are logged at debug level.
func WithLogger(l ports.Logger) ReaderOption {
	return func(r *Reader) { r.logger = l }
}

// NewReader creates a Reader over src. The sync window starts now.
func NewReader(src ports.ByteSource, opts ...ReaderOption) *Reader {
	r := &Reader{
		src:        src,
		logger:     nopLogger{},
		now:        time.Now,
		sleep:      sleepContext,
		syncWindow: DefaultSyncWindow,
		idle:       DefaultIdleInterval,
		maxLine:    MaxLineLength,
		buf:        make([]byte, readChunk),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.line = make([]byte, 0, r.maxLine)
	r.start = r.now()
	return r
}

// Next blocks until a line passes the sync gate and returns it without its
// terminator. It returns io.EOF once the source is exhausted, ctx.Err() when
// the context ends while idle, and a wrapped error for other read failures.
// Bytes after the last terminator are dropped at EOF.
func (r *Reader) Next(ctx context.Context) (string, error) {
	for {
		if r.pos >= r.n {
			if r.pending != nil {
				err := r.pending
				r.pending = nil
				return "", err
			}
			if err := r.fill(ctx); err != nil {
				return "", err
			}
			continue
		}

		c := r.buf[r.pos]
		r.pos++

		if c == '\n' || c == '\r' {
			if line, ok := r.accept(); ok {
				return line, nil
			}
			continue
		}

		if len(r.line) < r.maxLine {
			r.line = append(r.line, c)
		} else {
			r.overflow = true
		}
	}
}

// fill reads the next chunk, sleeping while the source has nothing.
func (r *Reader) fill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := r.src.Read(r.buf)
	r.pos, r.n = 0, n
	if err != nil {
		if !errors.Is(err, io.EOF) {
			err = fmt.Errorf("read device: %w", err)
		}
		if n == 0 {
			return err
		}
		r.pending = err
		return nil
	}
	if n == 0 {
		return r.sleep(ctx, r.idle)
	}
	return nil
}

// accept finishes the current line and applies the sync gate.
func (r *Reader) accept() (string, bool) {
	if len(r.line) == 0 {
		r.stats.Empty++
		return "", false
	}

	line := string(r.line)
	truncated := r.overflow
	r.line = r.line[:0]
	r.overflow = false

	if truncated {
		r.stats.Truncated++
		r.logger.Warn("line exceeded bound, excess bytes dropped",
			ports.Int("max", r.maxLine))
	}
	r.logger.Debug("frame received", ports.String("line", line))

	if r.state == Syncing {
		if elapsed := r.now().Sub(r.start); elapsed < r.syncWindow {
			r.stats.SyncDiscarded++
			r.logger.Debug("discarding frame during sync window",
				ports.Duration("elapsed", elapsed))
			return "", false
		}
		r.state = Synced
		r.logger.Info("device synchronized")
	}

	r.stats.Lines++
	return line, true
}

// State returns the sync gate state.
func (r *Reader) State() SyncState { return r.state }

// Stats returns the line counters.
func (r *Reader) Stats() Stats { return r.stats }

// Close closes the underlying source.
func (r *Reader) Close() error { return r.src.Close() }

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...ports.Field) {}
func (nopLogger) Info(msg string, fields ...ports.Field)  {}
func (nopLogger) Warn(msg string, fields ...ports.Field)  {}
func (nopLogger) Error(msg string, fields ...ports.Field) {}
