// Package watcher reports when a page file changes on disk.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smantzavinos/activity_viewer/pkg/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before signalling.
const DefaultDebounce = 250 * time.Millisecond

// Watcher signals on Changes() after a file is written, created or
// replaced. Bursts of events coalesce into one signal.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *slog.Logger

	changes chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logging.Component(l, "watcher") }
}

// New watches path. The parent directory is watched so editors that save
// by renaming a temp file over the original are still seen.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logging.Discard(),
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changes delivers one value per settled burst of changes. A pending
// signal that has not been received absorbs later ones.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Stop ends the watch and releases the fsnotify handle. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
		<-w.done
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("page changed", "path", w.path, "op", event.Op.String())
			pending = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "path", w.path, "error", err)
		}
	}
}
