package orchestrator

import (
	"log"

	"github.com/stride-cli/stride/internal/exec"
	"github.com/stride-cli/stride/pkg/models"
)

// HookConfig describes one external post-feature hook.
type HookConfig struct {
	// Enabled controls whether the hook fires at all.
	Enabled bool `mapstructure:"enabled"`
	// Script is the executable path to invoke.
	Script string `mapstructure:"script"`
}

// PostFeatureHooks holds the hooks fired after a feature item completes
// successfully in task-level agent mode.
type PostFeatureHooks struct {
	// BarneyAudit triggers the external audit script.
	BarneyAudit HookConfig `mapstructure:"barney_audit"`
}

// hookTrigger launches post-feature hooks as detached processes. The
// hook's exit status is never collected: a failing hook is unobservable
// here, which keeps hook problems fully decoupled from phase results.
type hookTrigger struct {
	runner   exec.CommandRunner
	repoPath string
}

// fire launches the hook for a completed feature. Only a failure to
// start the process is observable, and it is logged, never propagated.
func (t *hookTrigger) fire(hook HookConfig, feature *models.ExecutionItem) {
	if !hook.Enabled || hook.Script == "" {
		return
	}
	err := t.runner.StartDetached(t.repoPath, hook.Script,
		"--feature-id", feature.ID,
		"--identifier", feature.Identifier,
	)
	if err != nil {
		log.Printf("[executor] post-feature hook %s failed to start (ignored): %v", hook.Script, err)
	}
}
