package process

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher post-processes G-code files as they appear in the configured
// directories. Slicers write output incrementally, so write events are
// debounced and a file is only processed once its size stops changing.
type Watcher struct {
	proc    *Processor
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	sizes  map[string]int64
}

// NewWatcher creates a watcher over the Processor's configured watch
// directories.
func NewWatcher(proc *Processor) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		proc:    proc,
		watcher: fsw,
		timers:  make(map[string]*time.Timer),
		sizes:   make(map[string]int64),
	}, nil
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	dirs := w.proc.opts.Watch.Dirs
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		log.WithField("file", dir).Info("watching directory")
	}

	debounce := time.Duration(w.proc.opts.Watch.Debounce)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.wants(event.Name) {
				continue
			}
			w.schedule(event.Name, debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		}
	}
}

// wants reports whether a path matches the watch pattern and is not
// one of our own outputs.
func (w *Watcher) wants(path string) bool {
	matched, err := filepath.Match(w.proc.opts.Watch.Pattern, filepath.Base(path))
	if err != nil || !matched {
		return false
	}
	return !w.proc.IsOutputPath(path)
}

// schedule (re)arms the debounce timer for a path. Each further write
// event pushes processing back until the file settles.
func (w *Watcher) schedule(path string, debounce time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(debounce)
		return
	}
	w.timers[path] = time.AfterFunc(debounce, func() {
		w.settle(path, debounce)
	})
}

// settle processes a path once its size has held steady across two
// checks, else re-arms the timer for another round.
func (w *Watcher) settle(path string, debounce time.Duration) {
	size := statSize(path)

	w.mu.Lock()
	if size < 0 {
		// File vanished (atomic rename or deletion).
		delete(w.timers, path)
		delete(w.sizes, path)
		w.mu.Unlock()
		return
	}
	last, seen := w.sizes[path]
	w.sizes[path] = size
	if !seen || size != last {
		if t, ok := w.timers[path]; ok {
			t.Reset(debounce)
		}
		w.mu.Unlock()
		return
	}
	delete(w.timers, path)
	delete(w.sizes, path)
	w.mu.Unlock()

	if err := w.proc.ProcessFile(path, ""); err != nil {
		log.WithError(err).WithField("file", path).Error("post-processing failed")
	}
}

// stop cancels pending timers and closes the fsnotify watcher.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}
