// Package watch reloads a document when its file changes on disk.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of writes into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Reloader re-reads its backing file.
type Reloader interface {
	Reload() error
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before a reload. Zero uses DefaultDebounce.
	Debounce time.Duration

	// OnReload runs after every reload attempt with its error (nil on success).
	OnReload func(err error)
}

// Watcher watches one document file and reloads it after changes.
//
// The parent directory is watched rather than the file itself so editors
// that save by writing a temp file and renaming it are picked up.
//
// **Usage:**
//
//	w, err := watch.New("design.json", session, watch.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	target  Reloader
	options Options
	logger  *slog.Logger

	// Debouncing
	timer    *time.Timer
	timerGen uint64 // bumped per timer; a reload only clears its own
	timerMu  sync.Mutex
	reloads  int

	// Lifecycle
	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// New creates a watcher for path. A nil logger uses slog.Default().
func New(path string, target Reloader, options Options, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	return &Watcher{
		watcher:  fw,
		path:     abs,
		target:   target,
		options:  options,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watch: watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watch: watcher already started")
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.started = true

	w.logger.Info("document watcher started", "path", w.path)
	go w.eventLoop()
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("document watcher stopped", "path", w.path)
	return err
}

// Reloads returns how many reloads have run.
func (w *Watcher) Reloads() int {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	return w.reloads
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
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
			w.logger.Error("document watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	w.logger.Debug("document event", "op", event.Op.String())

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		w.debounceReload()
	}
}

// debounceReload restarts the quiet-period timer.
func (w *Watcher) debounceReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerGen++
	gen := w.timerGen
	w.timer = time.AfterFunc(w.options.Debounce, func() { w.reload(gen) })
}

// reload runs the reload scheduled as timer generation gen. A write that
// arrives while Reload runs schedules a newer timer, which stays in place.
func (w *Watcher) reload(gen uint64) {
	select {
	case <-w.stopChan:
		return
	default:
	}

	err := w.target.Reload()
	if err != nil {
		w.logger.Warn("document reload failed", "path", w.path, "error", err)
	}

	w.timerMu.Lock()
	w.reloads++
	if w.timerGen == gen {
		w.timer = nil
	}
	w.timerMu.Unlock()

	if w.options.OnReload != nil {
		w.options.OnReload(err)
	}
}
