// Package watch follows the log document on disk and reports its content
// each time another process rewrites it.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/moisturelog/internal/adapters/fs"
	"github.com/bft-labs/moisturelog/internal/logstore"
	"github.com/bft-labs/moisturelog/internal/ports"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads the document whenever its file is written, created or
// renamed into place. It never writes the file.
type Watcher struct {
	path   string
	store  *logstore.Store
	logger ports.Logger
	delay  time.Duration
}

// Option configures a Watcher.
type Option func(*options)

type options struct {
	cfg   logstore.Config
	delay time.Duration
}

// WithStoreConfig sets the device configuration used to repair the view.
func WithStoreConfig(cfg logstore.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// New creates a Watcher for the document at path.
func New(path string, logger ports.Logger, opts ...Option) *Watcher {
	o := options{cfg: logstore.DefaultConfig(), delay: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	path = filepath.Clean(path)
	return &Watcher{
		path:   path,
		store:  logstore.New(fs.NewDocumentFile(path), o.cfg, logstore.WithLogger(logger)),
		logger: logger,
		delay:  o.delay,
	}
}

// Run calls fn with the current document, then again after every change,
// until ctx is done. The directory holding the document must exist.
func (w *Watcher) Run(ctx context.Context, fn func(logstore.Snapshot)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching log document", ports.String("path", w.path))

	w.deliver(ctx, fn)

	debounce := time.NewTimer(w.delay)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(w.delay)

		case <-debounce.C:
			w.deliver(ctx, fn)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) deliver(ctx context.Context, fn func(logstore.Snapshot)) {
	snap, err := w.store.Load(ctx)
	if err != nil {
		w.logger.Warn("failed to load log document", ports.String("path", w.path), ports.Err(err))
		return
	}
	fn(snap)
}
