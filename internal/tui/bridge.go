package tui

import (
	"sync"

	"github.com/stride-cli/stride/internal/orchestrator"
)

// defaultBridgeBuffer is sized so a full parallel phase of events fits
// without the terminal ever back-pressuring the executor.
const defaultBridgeBuffer = 256

// Bridge converts executor listener callbacks into a channel of events.
type Bridge struct {
	events chan orchestrator.Event

	mu     sync.Mutex
	closed bool
}

// NewBridge creates a bridge with the default buffer.
func NewBridge() *Bridge {
	return &Bridge{events: make(chan orchestrator.Event, defaultBridgeBuffer)}
}

// Listener returns the callback to register with the executor.
func (b *Bridge) Listener() orchestrator.Listener {
	return func(ev orchestrator.Event) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		select {
		case b.events <- ev:
		default:
			// Buffer full: drop rather than stall the executor.
		}
	}
}

// Events returns the channel the dashboard reads from.
func (b *Bridge) Events() <-chan orchestrator.Event {
	return b.events
}

// Close stops accepting events and closes the channel, which tells the
// dashboard the run is over.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
}
