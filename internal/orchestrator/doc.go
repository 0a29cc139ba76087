// Package orchestrator drives the completion of planned work phases.
//
// The PhaseExecutor consumes one ExecutionPhase at a time and, per item,
// manages the branch lifecycle, leases an agent from the AgentPool, runs
// it to completion, and reports progress to the external tracking
// platform. Tracking failures are logged and swallowed: execution
// progress is never gated on the availability of the tracking system.
//
// Failure containment follows the phase's execution policy. In a
// parallel phase every item runs to its own outcome regardless of
// sibling failures; in a sequential phase the first failure stops the
// phase and later items are never attempted.
package orchestrator
