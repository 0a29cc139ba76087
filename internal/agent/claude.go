package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/stride-cli/stride/internal/exec"
)

// CLIRunner runs coding agents through the claude CLI subprocess.
type CLIRunner struct {
	runner  exec.CommandRunner
	workDir string
	model   string
}

// CLIRunnerConfig contains configuration for creating a CLIRunner.
type CLIRunnerConfig struct {
	// WorkDir is the repository path the agent operates in.
	WorkDir string
	// Model is the Claude model to use. Empty uses the CLI default.
	Model string
	// Runner is the command runner. If nil, a real exec runner is used.
	Runner exec.CommandRunner
}

// NewCLIRunner creates a new subprocess-backed runner.
func NewCLIRunner(cfg CLIRunnerConfig) *CLIRunner {
	runner := cfg.Runner
	if runner == nil {
		runner = exec.NewRunner()
	}
	return &CLIRunner{
		runner:  runner,
		workDir: cfg.WorkDir,
		model:   cfg.Model,
	}
}

// Run executes the claude CLI in print mode and blocks until it exits.
// Use --allowedTools to allow common operations without prompting.
// The project's .claude/settings.json can still deny specific patterns.
func (r *CLIRunner) Run(ctx context.Context, prompt string) (*Outcome, error) {
	args := []string{
		"--print",
		"--output-format", "text",
		"--allowedTools", "Read,Write,Edit,Bash,Glob,Grep,WebFetch",
	}
	if r.model != "" {
		args = append(args, "--model", r.model)
	}
	args = append(args, "-p", prompt)

	out, err := r.runner.Run(ctx, r.workDir, "claude", args...)
	if err != nil {
		return nil, fmt.Errorf("claude subprocess: %w: %s", err, truncate(string(out), 500))
	}

	return &Outcome{Summary: summarize(string(out))}, nil
}

// summarize reduces the agent's full transcript to a short summary:
// the final non-empty lines, capped at a reasonable length.
func summarize(output string) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "agent completed with no output"
	}
	return truncate(trimmed, 2000)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// CLIFactory creates CLIRunner instances sharing one configuration.
type CLIFactory struct {
	cfg CLIRunnerConfig
}

// NewCLIFactory creates a factory for subprocess-backed runners.
func NewCLIFactory(cfg CLIRunnerConfig) *CLIFactory {
	return &CLIFactory{cfg: cfg}
}

// NewRunner creates a new CLIRunner.
func (f *CLIFactory) NewRunner() Runner {
	return NewCLIRunner(f.cfg)
}

// Verify implementations at compile time.
var (
	_ Runner  = (*CLIRunner)(nil)
	_ Factory = (*CLIFactory)(nil)
)
