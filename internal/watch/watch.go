// Package watch reports when anything below a directory tree changes.
package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay is how long the tree must stay quiet before a change is reported.
const DefaultDebounceDelay = 500 * time.Millisecond

// Change describes a burst of filesystem events below the root.
type Change struct {
	// Paths holds every path touched during the burst, in arrival order.
	Paths     []string
	Timestamp time.Time
}

// Watcher coalesces fsnotify events for a whole tree into Change values.
// Directories created after startup are added as they appear.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan Change
	errors  chan error
	done    chan struct{}
	root    string

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	pending       []string
	seen          map[string]bool
	closed        bool
}

// New starts watching root and every directory below it.
func New(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:       fsw,
		changes:       make(chan Change, 1),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		root:          filepath.Clean(root),
		debounceDelay: debounce,
		seen:          make(map[string]bool),
	}

	if err := w.addRecursive(w.root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processEvents()

	return w, nil
}

// addRecursive registers dir and its subdirectories. Symlinked directories
// are not entered, matching the listing itself.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && path == w.root {
				return err
			}
			// Gone or unreadable below the root: nothing to watch there
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
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
			w.sendError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Permission flips do not change the listing
	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.sendError(err)
			}
		}
	}

	w.debounce(event.Name)
}

// debounce restarts the quiet-period timer and remembers path.
func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if !w.seen[path] {
		w.seen[path] = true
		w.pending = append(w.pending, path)
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	change := Change{Paths: w.pending, Timestamp: time.Now()}
	w.pending = nil
	w.seen = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	select {
	case w.changes <- change:
	case <-w.done:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		// Error channel full, drop the error
	}
}

// Changes returns the channel of coalesced changes.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Close stops the watcher. Pending changes are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
