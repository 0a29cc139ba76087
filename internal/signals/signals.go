// Package signals implements file-based run control via the .stride
// directory. Dropping a "stop" file asks the run loop to stop cleanly
// after the items already in flight finish.
package signals

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the .stride/signals directory for control files.
type Watcher struct {
	strideDir string

	mu         sync.RWMutex
	stopSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the given repository. The signals
// directory is created if missing. A failure to set up the fsnotify
// watcher is not fatal; detection falls back to stat on each check.
func NewWatcher(repoPath string) (*Watcher, error) {
	strideDir := filepath.Join(repoPath, ".stride")
	signalsDir := filepath.Join(strideDir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		strideDir: strideDir,
		done:      make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return w, nil
	}
	if err := fsw.Add(signalsDir); err != nil {
		fsw.Close()
		return w, nil
	}
	w.watcher = fsw

	go w.watch()

	return w, nil
}

// watch monitors the signals directory for stop files.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != "stop" {
				continue
			}
			if event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0 {
				w.mu.Lock()
				w.stopSignal = true
				w.mu.Unlock()
			}
		case <-w.watcher.Errors:
			// Keep watching; stat fallback still works.
		}
	}
}

// StopRequested returns true if a stop signal has been received.
func (w *Watcher) StopRequested() bool {
	// Also check the file directly in case the watcher missed it.
	stopPath := filepath.Join(w.strideDir, "signals", "stop")
	if _, err := os.Stat(stopPath); err == nil {
		w.mu.Lock()
		w.stopSignal = true
		w.mu.Unlock()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stopSignal
}

// RequestStop creates the stop signal file.
func (w *Watcher) RequestStop() error {
	path := filepath.Join(w.strideDir, "signals", "stop")
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes the stop signal file and resets signal state.
func (w *Watcher) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopSignal = false
	os.Remove(filepath.Join(w.strideDir, "signals", "stop"))
}

// Dir returns the path to the .stride directory.
func (w *Watcher) Dir() string {
	return w.strideDir
}

// Close shuts down the watcher.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
