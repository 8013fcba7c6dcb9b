package moisturelog

import (
	"context"
	"errors"
	"sync"

	"github.com/bft-labs/moisturelog/internal/adapters/fs"
	"github.com/bft-labs/moisturelog/internal/adapters/serial"
	"github.com/bft-labs/moisturelog/internal/app"
	"github.com/bft-labs/moisturelog/internal/domain"
	"github.com/bft-labs/moisturelog/internal/frame"
	"github.com/bft-labs/moisturelog/internal/logstore"
	"github.com/bft-labs/moisturelog/internal/ports"
)

// Stats counts frame outcomes of the current or most recent run.
type Stats struct {
	Stored      uint64
	ParseErrors uint64
	StoreErrors uint64
	ReadErrors  uint64
}

// Bridge reads moisture frames from a serial device and keeps the bounded
// JSON log document up to date. Use New to create one, then Start.
type Bridge struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	store     *logstore.Store
	logger    ports.Logger
	emitter   *eventEmitterWrapper

	mu          sync.RWMutex
	acquisition *app.Acquisition
	done        chan struct{}
}

// New creates a Bridge in StateStopped. It returns an error wrapping
// ErrInvalidConfig if cfg is invalid.
func New(cfg Config, opts ...Option) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	storage := o.storage
	if storage == nil {
		storage = fs.NewDocumentFile(cfg.DataFile)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	store := logstore.New(storage,
		logstore.Config{
			Port:       cfg.Device,
			BaudRate:   cfg.BaudRate,
			MaxRecords: cfg.MaxRecords,
		},
		logstore.WithLogger(o.logger),
		logstore.WithClock(o.clock),
		logstore.WithEcho(o.echo),
	)

	done := make(chan struct{})
	close(done)

	return &Bridge{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		store:     store,
		logger:    o.logger,
		emitter:   emitter,
		done:      done,
	}, nil
}

// Start opens the device and begins acquisition in the background. The
// device is opened before Start returns, so an unusable device is reported
// here as an error wrapping ErrDevice. ctx bounds the whole run.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	src, err := b.openSource()
	if err != nil {
		b.logger.Error("failed to open device",
			ports.String("device", b.config.Device),
			ports.Err(err),
		)
		_ = b.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}

	reader := frame.NewReader(src,
		frame.WithSyncWindow(b.config.SyncWindow),
		frame.WithIdleInterval(b.config.IdleInterval),
		frame.WithClock(b.opts.clock),
		frame.WithLogger(b.logger),
	)
	acq := app.NewAcquisition(reader, frame.Parser{}, b.store, b.logger, b.emitter)

	runCtx, cancel := context.WithCancel(ctx)
	b.lifecycle.SetCancel(cancel)
	b.acquisition = acq
	done := make(chan struct{})
	b.done = done

	b.lifecycle.AddWorker()
	go func() {
		defer close(done)
		defer b.lifecycle.WorkerDone()
		defer cancel()

		if err := b.lifecycle.TransitionTo(app.StateRunning, "acquisition started"); err != nil {
			_ = reader.Close()
			return
		}

		err := acq.Run(runCtx)
		switch {
		case err == nil:
			if b.lifecycle.TransitionTo(app.StateStopping, "input exhausted") == nil {
				_ = b.lifecycle.TransitionTo(app.StateStopped, "input exhausted")
			}
		case errors.Is(err, context.Canceled):
		default:
			b.logger.Error("acquisition failed", ports.Err(err))
			_ = b.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		}
	}()

	return nil
}

func (b *Bridge) openSource() (ports.ByteSource, error) {
	if b.opts.source != nil {
		return b.opts.source, nil
	}
	port, err := serial.Open(serial.Config{
		Device:      b.config.Device,
		BaudRate:    b.config.BaudRate,
		ReadTimeout: b.config.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("device opened",
		ports.String("device", port.Name()),
		ports.Int("baud_rate", b.config.BaudRate),
	)
	return port, nil
}

// Stop cancels acquisition and waits for the device to be released. It
// returns ErrNotRunning if the bridge is not running and ErrShutdownTimeout
// if the loop did not finish in time.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	if !b.lifecycle.CanStop() {
		b.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		b.mu.Unlock()
		return domain.ErrNotRunning
	}
	b.lifecycle.Cancel()
	b.mu.Unlock()

	err := b.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	if err != nil {
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
		return err
	}
	_ = b.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	return nil
}

// Status returns the current lifecycle state.
func (b *Bridge) Status() State {
	return convertState(b.lifecycle.State())
}

// Done returns a channel closed when the current run has ended, whether by
// Stop, context cancellation, input exhaustion or failure.
func (b *Bridge) Done() <-chan struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.done
}

// Stats returns the frame counters of the current or most recent run.
func (b *Bridge) Stats() Stats {
	b.mu.RLock()
	acq := b.acquisition
	b.mu.RUnlock()

	if acq == nil {
		return Stats{}
	}
	s := acq.Stats()
	return Stats{
		Stored:      s.Stored,
		ParseErrors: s.ParseErrors,
		StoreErrors: s.StoreErrors,
		ReadErrors:  s.ReadErrors,
	}
}

// Records returns the records currently in the log document, oldest first.
// Entries that are not records are skipped. The document is not modified.
func (b *Bridge) Records(ctx context.Context) ([]Record, error) {
	snap, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, snap.Len())
	for i := 0; i < snap.Len(); i++ {
		rec, err := snap.Record(i)
		if err != nil {
			b.logger.Debug("skipping foreign entry", ports.Int("index", i), ports.Err(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnRecordStored(r domain.Reading, records int) {
	if e.handler == nil {
		return
	}
	e.handler.OnRecordStored(RecordStoredEvent{Reading: r, Records: records})
}

func (e *eventEmitterWrapper) OnParseError(line string, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnParseError(ParseErrorEvent{Line: line, Error: err})
}

func (e *eventEmitterWrapper) OnStoreError(r domain.Reading, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnStoreError(StoreErrorEvent{Reading: r, Error: err})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
