// Package watch re-runs the harness when corpus files change.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault coalesces bursts of file events (editors often write
// several events per save) into one re-run.
const debounceDefault = 300 * time.Millisecond

// Watcher watches a corpus root recursively and invokes a handler
// after changes settle.
type Watcher struct {
	root     string
	handler  func()
	debounce time.Duration
}

// New creates a watcher over root. handler is called once per settled
// batch of changes, from the watcher's goroutine, never concurrently
// with itself.
func New(root string, handler func()) *Watcher {
	return &Watcher{
		root:     root,
		handler:  handler,
		debounce: debounceDefault,
	}
}

// Run blocks until ctx is cancelled, invoking the handler after each
// debounced batch of filesystem events under the root. Directories
// created while watching are added to the watch set.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := addRecursive(watcher, w.root); err != nil {
		return err
	}

	// Single debounce timer, reset on each event. Initialized stopped;
	// the first event starts it.
	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories need explicit watches.
				_ = addRecursive(watcher, event.Name)
			}
			pending = true
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_ = err // transient watch errors do not stop the loop

		case <-debounceTimer.C:
			if pending {
				pending = false
				w.handler()
			}
		}
	}
}

// addRecursive registers path and every directory beneath it. Non-dir
// paths are ignored; watching files individually is unnecessary since
// their parent directories are watched.
func addRecursive(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may have vanished between event and walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(p)
	})
}
