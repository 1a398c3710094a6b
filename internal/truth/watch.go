package truth

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write before the
// handler fires.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a truth store for changes and re-reads it.
// The parent .truth directory is watched rather than the file itself so
// atomic replace-by-rename writes are observed.
type Watcher struct {
	path     string
	handler  func(Snapshot)
	onError  func(error)
	debounce time.Duration
}

// NewWatcher creates a watcher for the truth store at path.
func NewWatcher(path string, handler func(Snapshot)) *Watcher {
	return &Watcher{
		path:     path,
		handler:  handler,
		debounce: DefaultDebounce,
	}
}

// WithDebounce overrides the debounce interval.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// OnError sets a callback for watcher errors. Errors are dropped otherwise.
func (w *Watcher) OnError(fn func(error)) *Watcher {
	w.onError = fn
	return w
}

// Run blocks until ctx is cancelled, invoking the handler with a fresh
// snapshot after each debounced change.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.handler(ReadFile(w.path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}
