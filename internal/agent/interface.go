// Package agent provides the opaque coding-agent capability.
//
// The agent's internal reasoning and tool use are deliberately not
// modeled here: a Runner takes a prompt and eventually produces an
// Outcome or an error. Timeout and cancellation boundaries are owned
// by the caller's context.
package agent

import "context"

// Outcome is the result of running an agent to completion.
type Outcome struct {
	// Summary is the agent's own description of the work performed.
	Summary string
}

// Runner executes one coding-agent task per call.
// Implemented by both CLIRunner (claude subprocess) and APIRunner
// (direct Anthropic API calls).
type Runner interface {
	// Run executes the agent with the given task prompt and blocks
	// until it finishes. A non-nil error means the agent failed.
	Run(ctx context.Context, prompt string) (*Outcome, error)
}

// Factory creates Runner instances. Each work item gets a fresh
// runner so state never leaks between items.
type Factory interface {
	// NewRunner creates a new Runner instance.
	NewRunner() Runner
}
