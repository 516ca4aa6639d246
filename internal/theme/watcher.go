package theme

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the events of one save (truncate, write, chmod).
const reloadDelay = 100 * time.Millisecond

// Watcher reloads a user theme file when it changes on disk. Bundled themes
// are never watched.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	theme    *Theme
	onChange func(*Theme)

	fs      *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
}

// NewWatcher creates a watcher for theme. The watcher owns theme and
// mutates it on reload; callbacks receive clones.
func NewWatcher(theme *Theme, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		theme:  theme,
	}
}

// SetChangeCallback sets the callback run with every changed theme.
func (w *Watcher) SetChangeCallback(fn func(*Theme)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches the theme's directory until Stop is called or ctx ends.
// Starting a running watcher or one holding a bundled theme does nothing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fs != nil {
		return nil
	}
	if w.theme == nil || w.theme.Builtin || w.theme.Path == "" {
		w.logger.Debug("not watching bundled theme")
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors often replace the file, so watch the directory.
	if err := fsw.Add(filepath.Dir(w.theme.Path)); err != nil {
		_ = fsw.Close()
		return err
	}

	w.fs = fsw
	w.done = make(chan struct{})
	w.stopped = make(chan struct{})
	go w.watch(ctx, fsw, w.done, w.stopped)

	w.logger.Debug("theme watcher started", "path", w.theme.Path)
	return nil
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fsw, done, stopped := w.fs, w.done, w.stopped
	w.fs = nil
	w.mu.Unlock()

	if fsw == nil {
		return
	}
	close(done)
	<-stopped
	_ = fsw.Close()
	w.logger.Debug("theme watcher stopped")
}

// IsRunning reports whether the watch loop is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fs != nil
}

func (w *Watcher) watch(ctx context.Context, fsw *fsnotify.Watcher, done, stopped chan struct{}) {
	defer close(stopped)
	filename := filepath.Base(w.theme.Path)

	debounce := time.NewTimer(reloadDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Chmod) {
				debounce.Reset(reloadDelay)
			}

		case <-debounce.C:
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)

		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

// reload re-reads the theme file and reports real changes. A file that is
// mid-write and fails to parse is ignored until the next event.
func (w *Watcher) reload() {
	w.mu.Lock()
	changed, err := w.theme.Reload()
	var clone *Theme
	if changed {
		clone = w.theme.Clone()
	}
	fn := w.onChange
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("failed to reload theme", "path", w.theme.Path, "error", err)
		return
	}
	if !changed {
		return
	}

	w.logger.Info("theme file changed, reloading", "path", clone.Path)
	if fn != nil {
		fn(clone)
	}
}
