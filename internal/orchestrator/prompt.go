package orchestrator

import (
	"fmt"
	"strings"

	"github.com/stride-cli/stride/internal/tracker"
	"github.com/stride-cli/stride/pkg/models"
)

// buildTaskPrompt renders the natural-language instruction handed to
// the agent for one work item.
func buildTaskPrompt(item *models.ExecutionItem, branch string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are completing one scheduled work item of a larger plan.\n\n")
	fmt.Fprintf(&b, "Item: %s (%s)\n", item.Identifier, item.Title)
	fmt.Fprintf(&b, "Type: %s\n", item.Type)
	if item.EstimatedComplexity != "" {
		fmt.Fprintf(&b, "Estimated complexity: %s\n", item.EstimatedComplexity)
	}
	fmt.Fprintf(&b, "Branch: %s\n", branch)

	if item.Description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", item.Description)
	}

	if len(item.Dependencies) > 0 {
		fmt.Fprintf(&b, "\nThe following items are already complete and may be relied on:\n")
		for _, dep := range item.Dependencies {
			fmt.Fprintf(&b, "- %s\n", dep)
		}
	}

	fmt.Fprintf(&b, "\nStay within the scope of this item. Commit your work to the branch above when done.\n")
	return b.String()
}

// buildSubTaskPrompt renders the instruction for one task of a feature
// being executed in task-level agent mode.
func buildSubTaskPrompt(feature *models.ExecutionItem, task *tracker.Item, branch string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are completing one task of feature %s (%s).\n\n", feature.Identifier, feature.Title)
	fmt.Fprintf(&b, "Task: %s (%s)\n", task.Identifier, task.Title)
	fmt.Fprintf(&b, "Branch: %s\n", branch)
	if feature.Description != "" {
		fmt.Fprintf(&b, "\nFeature context:\n%s\n", feature.Description)
	}
	fmt.Fprintf(&b, "\nComplete only this task. Commit your work to the branch above when done.\n")
	return b.String()
}
