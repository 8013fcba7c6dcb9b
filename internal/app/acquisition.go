package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/bft-labs/moisturelog/internal/domain"
	"github.com/bft-labs/moisturelog/internal/logstore"
	"github.com/bft-labs/moisturelog/internal/ports"
)

// LineReader yields complete, synchronized frames from the device.
type LineReader interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// LineParser turns one frame into a reading.
type LineParser interface {
	Parse(line string) (domain.Reading, error)
}

// RecordStore persists a reading into the bounded log.
type RecordStore interface {
	Append(ctx context.Context, r domain.Reading) (logstore.Snapshot, error)
}

// RecordEventEmitter is notified about the outcome of every frame.
type RecordEventEmitter interface {
	OnRecordStored(r domain.Reading, records int)
	OnParseError(line string, err error)
	OnStoreError(r domain.Reading, err error)
}

// AcquisitionStats counts frame outcomes since the loop started.
type AcquisitionStats struct {
	Stored      uint64
	ParseErrors uint64
	StoreErrors uint64
	ReadErrors  uint64
}

// Acquisition drives frames from the reader through the parser into the
// store. It is the only control-flow driver of a bridge.
type Acquisition struct {
	reader  LineReader
	parser  LineParser
	store   RecordStore
	logger  ports.Logger
	emitter RecordEventEmitter

	backoffInitial time.Duration
	backoffMax     time.Duration

	stored      atomic.Uint64
	parseErrors atomic.Uint64
	storeErrors atomic.Uint64
	readErrors  atomic.Uint64
}

// NewAcquisition wires the loop. emitter may be nil.
func NewAcquisition(
	reader LineReader,
	parser LineParser,
	store RecordStore,
	logger ports.Logger,
	emitter RecordEventEmitter,
) *Acquisition {
	return &Acquisition{
		reader:         reader,
		parser:         parser,
		store:          store,
		logger:         logger,
		emitter:        emitter,
		backoffInitial: DefaultBackoffInitial,
		backoffMax:     DefaultBackoffMax,
	}
}

// Run processes frames until ctx is canceled or the source is exhausted.
// Parse and store failures never stop the loop. A device read error is
// logged and retried after a growing delay. The reader is closed on return.
// Run returns nil on source exhaustion and ctx.Err() on cancellation.
func (a *Acquisition) Run(ctx context.Context) error {
	defer func() {
		if err := a.reader.Close(); err != nil {
			a.logger.Warn("failed to close device", ports.Err(err))
		}
	}()

	retry := newBackoff(a.backoffInitial, a.backoffMax)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := a.reader.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.logger.Info("input exhausted")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			a.readErrors.Add(1)
			a.logger.Error("read error",
				ports.Err(err),
				ports.Duration("retry_in", retry.Current()),
			)
			if err := retry.Sleep(ctx); err != nil {
				return err
			}
			continue
		}
		retry.Reset()

		a.handle(ctx, line)
	}
}

func (a *Acquisition) handle(ctx context.Context, line string) {
	reading, err := a.parser.Parse(line)
	if err != nil {
		a.parseErrors.Add(1)
		a.logger.Warn("invalid frame, skipped",
			ports.String("line", line),
			ports.Err(err),
		)
		if a.emitter != nil {
			a.emitter.OnParseError(line, err)
		}
		return
	}

	snap, err := a.store.Append(ctx, reading)
	if err != nil {
		a.storeErrors.Add(1)
		a.logger.Error("failed to store record",
			ports.String("line", line),
			ports.Err(err),
		)
		if a.emitter != nil {
			a.emitter.OnStoreError(reading, err)
		}
		return
	}

	a.stored.Add(1)
	a.logger.Info("stored record",
		ports.Float64("humidity", reading.Humidity),
		ports.String("relay_status", reading.Relay.String()),
		ports.Float64("threshold", reading.Threshold),
		ports.Int("records", snap.Len()),
	)
	if a.emitter != nil {
		a.emitter.OnRecordStored(reading, snap.Len())
	}
}

// Stats returns the frame outcome counters. Safe to call while Run is
// executing.
func (a *Acquisition) Stats() AcquisitionStats {
	return AcquisitionStats{
		Stored:      a.stored.Load(),
		ParseErrors: a.parseErrors.Load(),
		StoreErrors: a.storeErrors.Load(),
		ReadErrors:  a.readErrors.Load(),
	}
}
