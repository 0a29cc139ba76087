package models

import "fmt"

// ExecutionPhase is a dependency-safe batch of items produced by the
// upstream planner. Items within a phase have no backward dependencies
// on each other.
type ExecutionPhase struct {
	// Order is the phase's position in the overall plan.
	Order int `json:"order" yaml:"order"`
	// Items is the ordered sequence of work items in this phase.
	Items []ExecutionItem `json:"items" yaml:"items"`
	// CanRunInParallel indicates the items may execute concurrently.
	CanRunInParallel bool `json:"can_run_in_parallel" yaml:"can_run_in_parallel"`
	// EstimatedComplexity is the planner's effort estimate for the phase.
	EstimatedComplexity Complexity `json:"estimated_complexity" yaml:"estimated_complexity"`
}

// Validate checks the structural integrity of the phase. A phase that
// fails validation is a programmer error, not a runtime failure.
func (p *ExecutionPhase) Validate() error {
	if len(p.Items) == 0 {
		return fmt.Errorf("phase %d: no items", p.Order)
	}
	seen := make(map[string]bool, len(p.Items))
	for idx := range p.Items {
		item := &p.Items[idx]
		if item.ID == "" {
			return fmt.Errorf("phase %d: item %d: missing id", p.Order, idx)
		}
		if item.Identifier == "" {
			return fmt.Errorf("phase %d: item %s: missing identifier", p.Order, item.ID)
		}
		if !item.Type.Valid() {
			return fmt.Errorf("phase %d: item %s: invalid type %q", p.Order, item.Identifier, item.Type)
		}
		if seen[item.ID] {
			return fmt.Errorf("phase %d: duplicate item id %s", p.Order, item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

// Sequential returns true if the phase must run on the sequential path.
// Single-item phases always take the sequential path: there is no
// parallelism benefit and the bookkeeping is simpler.
func (p *ExecutionPhase) Sequential() bool {
	return !p.CanRunInParallel || len(p.Items) <= 1
}
