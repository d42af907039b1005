package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called after the watched files have changed and settled.
type ChangeFunc func(ctx context.Context) error

// Watcher calls a ChangeFunc when any of a set of files is written,
// created, or replaced.
type Watcher struct {
	paths    map[string]struct{}
	dirs     []string
	debounce time.Duration
	onChange ChangeFunc

	mu  sync.Mutex
	log io.Writer

	// ready, when set, is called once the directories are being watched.
	ready func()
}

// New creates a Watcher for paths. debounce is how long the files must be
// quiet before onChange runs.
func New(paths []string, debounce time.Duration, onChange ChangeFunc) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if onChange == nil {
		return nil, fmt.Errorf("change callback cannot be nil")
	}
	if debounce < 0 {
		return nil, fmt.Errorf("debounce cannot be negative")
	}

	w := &Watcher{
		paths:    make(map[string]struct{}, len(paths)),
		debounce: debounce,
		onChange: onChange,
		log:      os.Stderr,
	}

	seen := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.paths[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			w.dirs = append(w.dirs, dir)
		}
	}

	return w, nil
}

// SetLogOutput sets where diagnostics are written (useful for testing).
func (w *Watcher) SetLogOutput(out io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.log = out
}

func (w *Watcher) logf(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.log, "watcher: "+format+"\n", args...)
}

// Run watches until ctx is cancelled. Callback errors are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	if w.ready != nil {
		w.ready()
	}

	// A stopped timer with a drained channel; armed on the first change.
	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			stopTimer(timer)
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logf("file watch error: %v", err)

		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logf("re-import failed: %v", err)
			}
		}
	}
}

// stopTimer stops t and discards a pending tick.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// relevant reports whether ev touches a watched file in a way that may
// change its contents.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	_, ok := w.paths[abs]
	return ok
}
