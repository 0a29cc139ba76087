package signals

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWatcherCreatesDirectories(t *testing.T) {
	repo := t.TempDir()
	w, err := NewWatcher(repo)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(filepath.Join(repo, ".stride", "signals")); err != nil {
		t.Errorf("signals dir not created: %v", err)
	}
	if w.Dir() != filepath.Join(repo, ".stride") {
		t.Errorf("dir = %q", w.Dir())
	}
}

func TestStopRequestedDefaultsFalse(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if w.StopRequested() {
		t.Error("fresh watcher should not report a stop")
	}
}

func TestRequestStopRoundTrip(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := w.RequestStop(); err != nil {
		t.Fatalf("RequestStop: %v", err)
	}
	// The stat fallback guarantees detection without waiting for the
	// watcher goroutine.
	if !w.StopRequested() {
		t.Error("stop signal not detected")
	}

	w.Clear()
	if w.StopRequested() {
		t.Error("stop signal should be cleared")
	}
}

func TestStopFileFromAnotherProcess(t *testing.T) {
	repo := t.TempDir()
	w, err := NewWatcher(repo)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	// Simulate an external `touch .stride/signals/stop`.
	stopPath := filepath.Join(repo, ".stride", "signals", "stop")
	if err := os.WriteFile(stopPath, nil, 0644); err != nil {
		t.Fatalf("writing stop file: %v", err)
	}
	if !w.StopRequested() {
		t.Error("externally created stop file not detected")
	}
}

func TestIgnoresUnrelatedFiles(t *testing.T) {
	repo := t.TempDir()
	w, err := NewWatcher(repo)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	other := filepath.Join(repo, ".stride", "signals", "pause")
	if err := os.WriteFile(other, nil, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if w.StopRequested() {
		t.Error("unrelated signal file should not trigger a stop")
	}
}
