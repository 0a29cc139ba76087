package orchestrator

import (
	"errors"
	"testing"
)

func TestTrackingErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TrackingError{Op: "startWork", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("TrackingError should unwrap to its cause")
	}
	want := "tracking startWork: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSpawnErrorUnwrapsSentinel(t *testing.T) {
	err := &SpawnError{Identifier: "F1", Err: ErrPoolAtCapacity}
	if !errors.Is(err, ErrPoolAtCapacity) {
		t.Error("SpawnError should unwrap to ErrPoolAtCapacity")
	}
}
