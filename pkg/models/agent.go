package models

import "time"

// AgentStatus represents the current state of an agent lease.
type AgentStatus string

const (
	// AgentStatusIdle indicates the agent is leased but not yet running.
	AgentStatusIdle AgentStatus = "idle"
	// AgentStatusWorking indicates the agent is actively executing.
	AgentStatusWorking AgentStatus = "working"
	// AgentStatusDone indicates the agent completed its work.
	AgentStatusDone AgentStatus = "done"
	// AgentStatusFailed indicates the agent encountered an error.
	AgentStatusFailed AgentStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusIdle, AgentStatusWorking, AgentStatusDone, AgentStatusFailed:
		return true
	default:
		return false
	}
}

// Agent is a worker-pool lease bound to exactly one item for its
// lifetime. The pool owns the Agent exclusively; callers hold only
// the ID and release the lease via RemoveAgent.
type Agent struct {
	// ID is the pool-assigned identifier, unique for the pool's lifetime.
	ID string `json:"id"`
	// TaskID is the item identifier this agent is bound to, for correlation.
	TaskID string `json:"task_id"`
	// Branch is the version-control branch the agent operates on.
	Branch string `json:"branch"`
	// Status is the current state of the agent.
	Status AgentStatus `json:"status"`
	// Progress is the completion estimate, 0-100.
	Progress int `json:"progress"`
	// StartedAt is when the agent was leased.
	StartedAt time.Time `json:"started_at"`
}
