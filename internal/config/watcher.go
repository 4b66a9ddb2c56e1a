package config

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when adding files to a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// ChangeHandler is called with the path of a document that changed.
type ChangeHandler func(path string)

// Watcher reports changes to documents on disk.
//
// Editors often save by writing a new file and renaming it over the old
// one, so the watcher watches each document's directory and filters events
// by name. Bursts of events for one file are coalesced into a single call
// once the file has been quiet for the debounce interval. Handlers run on
// the watcher's goroutines; hosts forward them to their event loop.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	pending  map[string]*pendingChange
	gen      uint64
	debounce time.Duration
	onChange ChangeHandler
	logger   *slog.Logger

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

type pendingChange struct {
	timer *time.Timer
	gen   uint64
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet interval before a change is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher calling onChange for every changed document.
func NewWatcher(onChange ChangeHandler, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]*pendingChange),
		debounce: 100 * time.Millisecond,
		onChange: onChange,
		logger:   slog.New(slog.DiscardHandler),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add starts watching the document at path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Files returns the watched document paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("document watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.files[path] {
		return
	}
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.pending[path] = &pendingChange{
		gen:   gen,
		timer: time.AfterFunc(w.debounce, func() { w.fire(path, gen) }),
	}
}

// fire reports path unless a later event rescheduled it. A timer that
// already fired cannot be stopped, so stale generations are dropped here.
func (w *Watcher) fire(path string, gen uint64) {
	w.mu.Lock()
	if p, ok := w.pending[path]; w.closed || !ok || p.gen != gen {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	w.logger.Debug("document changed", "path", path)
	w.onChange(path)
}
