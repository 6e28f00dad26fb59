// Package watcher imports calendar files dropped into a directory.
// Editors and download managers produce bursts of create/write events
// for one file, so events are debounced per path before the handler
// runs.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "icstask/internal/log"
)

const defaultDebounce = 500 * time.Millisecond

// Handler is invoked with the path of a settled .ics file.
type Handler func(ctx context.Context, path string)

type Watcher struct {
	dir      string
	handler  Handler
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher for dir. The handler runs on a timer
// goroutine; it must serialize store access itself if needed.
func New(dir string, handler Handler) *Watcher {
	return &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: defaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches the directory until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	appLog.Info("watching drop directory", "dir", w.dir)

	defer w.cancelPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			appLog.Error("watch error", err, "dir", w.dir)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}
	if !isICSPath(ev.Name) {
		return
	}
	w.schedule(ctx, ev.Name)
}

// schedule arms (or re-arms) the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.handler(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func isICSPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ics")
}
