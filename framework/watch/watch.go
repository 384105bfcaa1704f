// Package watch reports changes to manifest files, coalescing bursts of
// events into a single notification.
package watch

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 250 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	Files    []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher signals when any of a set of manifest files changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]struct{} // absolute paths
	debounce time.Duration
	logger   *slog.Logger
	changes  chan struct{}
	done     chan struct{}
}

// New creates a watcher for cfg.Files. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	files := make(map[string]struct{}, len(cfg.Files))
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		files[abs] = struct{}{}
	}

	w := &Watcher{
		files:    files,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w.fs = fs
	return w, nil
}

// Start subscribes to the parent directory of every file, so a file that an
// editor replaces on save keeps being seen. The returned channel holds at
// most one pending signal.
func (w *Watcher) Start() (<-chan struct{}, error) {
	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		if err := w.fs.Add(dir); err != nil {
			return nil, fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}

	go w.run()
	return w.changes, nil
}

// Stop ends the event loop and closes the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) run() {
	var (
		timer *time.Timer
		fire  <-chan time.Time // nil while no burst is pending
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.concerns(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// concerns reports whether ev changed the content of a watched file.
func (w *Watcher) concerns(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[name]
	return ok
}
