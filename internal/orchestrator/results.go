package orchestrator

import (
	"time"

	"github.com/stride-cli/stride/pkg/models"
)

// AgentResult is the outcome of running one agent to completion.
type AgentResult struct {
	// AgentID is the pool-assigned agent identifier.
	AgentID string
	// TaskID is the item identifier the agent was bound to.
	TaskID string
	// Success indicates whether the agent completed its work.
	Success bool
	// Summary is the agent's description of the work (on success).
	Summary string
	// Error is the structured failure (on failure).
	Error error
	// Duration is the elapsed wall-clock time of the agent run.
	Duration time.Duration
}

// ItemResult is the per-item outcome recorded by the executor. Items
// never reached because of a sequential early stop produce no result.
type ItemResult struct {
	// Identifier is the item's human-readable code.
	Identifier string
	// Type is the kind of work item.
	Type models.ItemType
	// Branch is the branch the item's work happened on.
	Branch string
	// Success indicates whether the item completed.
	Success bool
	// Duration is the elapsed time of the item's agent run only;
	// tracking calls are excluded.
	Duration time.Duration
	// Error is set when the item failed.
	Error error
}

// PhaseResult is the aggregate outcome of one phase execution.
type PhaseResult struct {
	// Success is true iff every attempted item succeeded and no item
	// was skipped by an early stop.
	Success bool
	// CompletedItems lists identifiers of items that succeeded.
	CompletedItems []string
	// FailedItems lists identifiers of items that failed.
	FailedItems []string
	// ItemResults holds one result per attempted item, in item order.
	ItemResults []ItemResult
	// Duration is the wall-clock time for the whole phase call.
	Duration time.Duration
}
