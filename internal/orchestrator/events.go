package orchestrator

import (
	"log"
	"sync"
	"time"

	"github.com/stride-cli/stride/pkg/models"
)

// EventType represents the type of executor event.
type EventType string

const (
	// EventPhaseStart indicates a phase has begun execution.
	EventPhaseStart EventType = "phase:start"
	// EventPhaseComplete indicates a phase has finished.
	EventPhaseComplete EventType = "phase:complete"
	// EventItemStart indicates an item has begun execution.
	EventItemStart EventType = "item:start"
	// EventItemComplete indicates an item completed successfully.
	EventItemComplete EventType = "item:complete"
	// EventItemError indicates an item failed.
	EventItemError EventType = "item:error"
)

// Event is a lifecycle notification emitted by the executor. Every
// event carries a timestamp and correlates to a phase or item.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Phase is the related phase, set on phase events.
	Phase *models.ExecutionPhase
	// Item is the related item, set on item events.
	Item *models.ExecutionItem
	// PhaseResult is set on phase:complete.
	PhaseResult *PhaseResult
	// ItemResult is set on item:complete.
	ItemResult *ItemResult
	// Err is set on item:error.
	Err error
}

// Listener receives executor events. Listeners are invoked
// synchronously; slow consumers should hand events off to their own
// goroutine or channel.
type Listener func(Event)

// Emitter dispatches events to registered listeners. Registration
// lives on the executor itself rather than a global bus so the core
// stays testable in isolation.
type Emitter struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEmitter creates an Emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers a listener for all future events.
func (e *Emitter) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Emit dispatches the event to every registered listener. Delivery is
// fire-and-forget: a panicking listener is logged and does not affect
// execution or other listeners.
func (e *Emitter) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	e.mu.RLock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, l := range listeners {
		e.dispatch(l, event)
	}
}

func (e *Emitter) dispatch(l Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[events] listener panicked on %s: %v", event.Type, r)
		}
	}()
	l(event)
}
