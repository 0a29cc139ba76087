// Package tracker provides the client for the external project-tracking
// platform. The platform is the system of record for item status; every
// call here may fail and callers are expected to log and continue.
package tracker

import "github.com/stride-cli/stride/pkg/models"

// StartWorkOptions contains optional parameters for StartWork.
type StartWorkOptions struct {
	// SessionID correlates the status change with an execution session.
	SessionID string `json:"session_id,omitempty"`
}

// CompleteWorkOptions contains optional parameters for CompleteWork.
type CompleteWorkOptions struct {
	// Summary is the agent's description of the completed work.
	Summary string `json:"summary,omitempty"`
	// CommitHash is the HEAD commit after the work finished.
	CommitHash string `json:"commit_hash,omitempty"`
	// ModifiedFiles lists the files touched by the work.
	ModifiedFiles []string `json:"modified_files,omitempty"`
}

// ProgressOptions contains parameters for LogProgress.
type ProgressOptions struct {
	// Message describes the progress being reported.
	Message string `json:"message"`
	// PercentComplete is the optional completion estimate, 0-100.
	PercentComplete *int `json:"percent_complete,omitempty"`
}

// FeatureUpdate contains mutable feature fields for UpdateFeature.
type FeatureUpdate struct {
	// StatusID is the platform status to set on the feature.
	StatusID string `json:"status_id"`
}

// Item is a tracked work item as returned by the platform.
type Item struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Status     string `json:"status"`
}

// TaskList is a page of tasks under a feature.
type TaskList struct {
	Data []Item   `json:"data"`
	Meta ListMeta `json:"meta"`
}

// ListMeta carries pagination info for list responses.
type ListMeta struct {
	Total int `json:"total"`
}

// SessionEvent is an execution lifecycle event forwarded to the platform.
type SessionEvent struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
}

// Client records start/completion/progress of work items on the
// tracking platform.
type Client interface {
	// StartWork marks an item as in progress.
	StartWork(itemType models.ItemType, id string, opts StartWorkOptions) (*Item, error)

	// CompleteWork marks an item as done with a completion summary.
	CompleteWork(itemType models.ItemType, id string, opts CompleteWorkOptions) (*Item, error)

	// LogProgress records an intermediate progress message for an item.
	LogProgress(itemType models.ItemType, id string, opts ProgressOptions) error

	// UpdateFeature mutates feature-level fields, most notably status.
	UpdateFeature(featureID string, update FeatureUpdate) error

	// ListTasks returns the tasks belonging to a feature.
	ListTasks(featureID string) (*TaskList, error)

	// EmitSessionEvent forwards an execution lifecycle event.
	EmitSessionEvent(event SessionEvent) error
}
