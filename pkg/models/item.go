package models

// ItemType distinguishes feature-level from task-level work items.
type ItemType string

const (
	// ItemTypeFeature is a feature-level work item.
	ItemTypeFeature ItemType = "feature"
	// ItemTypeTask is a task-level work item.
	ItemTypeTask ItemType = "task"
)

// Valid returns true if the type is a known value.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeFeature, ItemTypeTask:
		return true
	default:
		return false
	}
}

// Complexity is the planner's effort estimate for an item or phase.
type Complexity string

const (
	// ComplexitySimple indicates a small, well-bounded change.
	ComplexitySimple Complexity = "simple"
	// ComplexityModerate indicates a typical multi-file change.
	ComplexityModerate Complexity = "moderate"
	// ComplexityComplex indicates a large or risky change.
	ComplexityComplex Complexity = "complex"
)

// Valid returns true if the complexity is a known value.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	default:
		return false
	}
}

// ExecutionItem is a single unit of work scheduled within a phase.
// Items are immutable once phase execution begins.
type ExecutionItem struct {
	// Type is the kind of work item (feature or task).
	Type ItemType `json:"type" yaml:"type"`
	// ID is the stable opaque identifier from the tracking system.
	ID string `json:"id" yaml:"id"`
	// Identifier is the human-readable code (e.g. "FEAT-102").
	Identifier string `json:"identifier" yaml:"identifier"`
	// Title is the short description of the item.
	Title string `json:"title" yaml:"title"`
	// Description provides detailed information about the item.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// ExecutionOrder breaks ties between items within a phase.
	ExecutionOrder int `json:"execution_order" yaml:"execution_order"`
	// CanParallelize indicates the item is safe to run alongside siblings.
	CanParallelize bool `json:"can_parallelize" yaml:"can_parallelize"`
	// ParallelGroup is an opaque grouping key assigned by the planner.
	ParallelGroup string `json:"parallel_group,omitempty" yaml:"parallel_group,omitempty"`
	// Dependencies lists item IDs that must be complete before this item.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	// EstimatedComplexity is the planner's effort estimate.
	EstimatedComplexity Complexity `json:"estimated_complexity" yaml:"estimated_complexity"`
	// EpicID is set only for feature items eligible for task-level agents.
	EpicID string `json:"epic_id,omitempty" yaml:"epic_id,omitempty"`
}

// IsFeature returns true if the item is a feature-level item.
func (i *ExecutionItem) IsFeature() bool {
	return i.Type == ItemTypeFeature
}
