package config

import (
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies a callback whenever a watched file is written.
// It calls the callback once for every fsnotify Write, Create or Rename
// event; events are not coalesced, so a single save that produces
// several events triggers several calls.
type Watcher struct {
	fw       *fsnotify.Watcher
	onChange func(path string)
	mu       sync.Mutex
	closed   bool
}

// NewWatcher starts watching the given files and invokes onChange with
// the path that changed whenever one of them is written or replaced.
// onChange is called from the watcher's own goroutine; callers that
// mutate shared state from it must synchronise themselves.
func NewWatcher(paths []string, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := fw.Add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{fw: fw, onChange: onChange}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.onChange(event.Name)
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.fw.Close(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return err
	}
	return nil
}
