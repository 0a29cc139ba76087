package orchestrator

import (
	"errors"
	"fmt"
)

// Common errors for pool and executor operations.
var (
	// ErrPoolAtCapacity indicates no agent slot is available.
	ErrPoolAtCapacity = errors.New("agent pool at capacity")
	// ErrAgentNotFound indicates the requested agent does not exist.
	ErrAgentNotFound = errors.New("agent not found")
)

// SpawnError indicates an agent could not be created for an item,
// either because the pool was at capacity or the underlying worker
// could not be constructed. Spawn failures are recorded as failed item
// results and never retried automatically.
type SpawnError struct {
	// Identifier is the human-readable code of the offending item.
	Identifier string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn agent for %s: %v", e.Identifier, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExecutionError indicates an agent ran but reported failure.
type ExecutionError struct {
	// AgentID is the agent that reported the failure.
	AgentID string
	// TaskID is the item identifier the agent was bound to.
	TaskID string
	// Err is the agent's failure payload.
	Err error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("agent %s failed task %s: %v", e.AgentID, e.TaskID, e.Err)
}

// Unwrap returns the agent's failure payload.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// TrackingError indicates a tracking-platform call failed. It is only
// ever logged: tracking failures never affect item or phase outcomes.
type TrackingError struct {
	// Op names the tracking call that failed, e.g. "startWork".
	Op string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TrackingError) Error() string {
	return fmt.Sprintf("tracking %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TrackingError) Unwrap() error {
	return e.Err
}
