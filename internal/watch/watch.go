// Package watch mirrors a JSON file on disk into the document store, so the
// document can be edited in any text editor.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/form"
	"github.com/jonathan/portfolio-admin/internal/store"
)

// DefaultDelay is the quiet period after the last write before the file is read.
const DefaultDelay = 300 * time.Millisecond

// Stats counts watcher activity.
type Stats struct {
	Events  int
	Applied int
	Invalid int
	Errors  int
}

// Result is the outcome of one sync of the file into the store.
type Result struct {
	Status form.RawStatus
	Saved  bool
	Err    error
}

// Watcher treats every save of a file as an edit of the raw JSON view. Valid
// edits replace the document and are saved to the cache; invalid ones are
// reported and change nothing.
type Watcher struct {
	path     string
	store    *store.Store
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce *form.Debouncer[struct{}]
	onSync   func(Result)

	dirty  chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	mu      sync.Mutex
	running bool
	closed  bool
	stats   Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// OnSync registers fn to be called after every sync.
func OnSync(fn func(Result)) Option {
	return func(w *Watcher) { w.onSync = fn }
}

// New returns a watcher for path. delay is the debounce quiet period;
// DefaultDelay is used when it is not positive.
func New(path string, st *store.Store, delay time.Duration, opts ...Option) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		path:    abs,
		store:   st,
		logger:  zap.NewNop(),
		watcher: fw,
		dirty:   make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	w.debounce = form.NewDebouncer(delay, func(struct{}) {
		select {
		case w.dirty <- struct{}{}:
		default:
		}
	})
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path is the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. Editors often replace a file instead of writing it,
// so the parent directory is watched and events are filtered by name.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errors.New("watcher is stopped")
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching file", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit. Pending
// changes that have not been synced yet are dropped. A stopped watcher cannot
// be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	w.debounce.Stop()
	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing file watcher", zap.Error(err))
	}
	w.logger.Debug("file watcher stopped")
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-w.doneCh:
	}
	w.Stop()
	return nil
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
			w.count(func(s *Stats) { s.Errors++ })

		case <-w.dirty:
			w.Sync(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("file changed", zap.String("op", event.Op.String()))
	w.count(func(s *Stats) { s.Events++ })
	w.debounce.Trigger(struct{}{})
}

// Sync reads the file now and applies it to the store.
func (w *Watcher) Sync(ctx context.Context) Result {
	res := w.sync(ctx)
	if w.onSync != nil {
		w.onSync(res)
	}
	return res
}

func (w *Watcher) sync(ctx context.Context) Result {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// A rename-based save can leave the file briefly missing.
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("watched file missing", zap.String("path", w.path))
		} else {
			w.logger.Error("failed to read watched file", zap.Error(err))
		}
		w.count(func(s *Stats) { s.Errors++ })
		return Result{Err: err}
	}

	status := w.store.EditRaw(string(data))
	if !status.Valid {
		w.logger.Warn("watched file is not a valid document", zap.String("error", status.Error), zap.Strings("details", status.Details))
		w.count(func(s *Stats) { s.Invalid++ })
		return Result{Status: status}
	}
	w.count(func(s *Stats) { s.Applied++ })

	if _, err := w.store.Save(ctx, store.ToCache()); err != nil {
		w.logger.Error("failed to save document", zap.Error(err))
		w.count(func(s *Stats) { s.Errors++ })
		return Result{Status: status, Err: err}
	}
	w.logger.Info("document updated from file")
	return Result{Status: status, Saved: true}
}

func (w *Watcher) count(fn func(*Stats)) {
	w.mu.Lock()
	fn(&w.stats)
	w.mu.Unlock()
}
