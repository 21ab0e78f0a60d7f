package confloader

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// DefaultSettle is the quiet period after the last event before
// callbacks run. Editors often emit several events for one save.
const DefaultSettle = 100 * time.Millisecond

// Watcher calls back when watched files change on disk.
type Watcher struct {
	fs     *fsnotify.Watcher
	settle time.Duration
	logger logger.Logger

	mu        sync.Mutex
	files     map[string]struct{}
	callbacks []func(path string)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithSettle sets the quiet period used to coalesce bursts of events.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.settle = d }
}

// NewWatcher creates a watcher. It must be released by Run returning or
// by Close.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fs,
		settle: DefaultSettle,
		logger: logger.Default(),
		files:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds path. Its directory is watched so that editors that save
// by renaming a temporary file are noticed.
func (w *Watcher) Watch(path string) error {
	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		return err
	}
	w.mu.Lock()
	w.files[filepath.Clean(path)] = struct{}{}
	w.mu.Unlock()
	w.logger.Debug("watching configuration file", "path", path)
	return nil
}

// OnChange registers fn. Callbacks run sequentially on the Run goroutine.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, fn)
	w.mu.Unlock()
}

// Close releases the underlying notifier. Run closes it on return.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run delivers change notifications until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fs.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if !w.watched(path) {
				continue
			}
			w.logger.Debug("configuration file changed", "file", path, "op", ev.Op.String())
			pending[path] = struct{}{}
			timer.Reset(w.settle)

		case <-timer.C:
			for path := range pending {
				w.notify(path)
				delete(pending, path)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("configuration watcher error", "error", err)
		}
	}
}

func (w *Watcher) watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[path]
	return ok
}

func (w *Watcher) notify(path string) {
	w.mu.Lock()
	callbacks := append(([]func(string))(nil), w.callbacks...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(path)
	}
}
