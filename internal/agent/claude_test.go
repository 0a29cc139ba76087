package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeCommandRunner records invocations and returns canned output.
type fakeCommandRunner struct {
	output  []byte
	err     error
	lastCmd string
	args    []string
	workDir string
}

func (f *fakeCommandRunner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, error) {
	f.lastCmd = name
	f.args = args
	f.workDir = workDir
	return f.output, f.err
}

func (f *fakeCommandRunner) StartDetached(workDir string, name string, args ...string) error {
	return nil
}

func TestCLIRunnerRun(t *testing.T) {
	fake := &fakeCommandRunner{output: []byte("Implemented the login form.\n")}
	runner := NewCLIRunner(CLIRunnerConfig{WorkDir: "/repo", Runner: fake})

	outcome, err := runner.Run(context.Background(), "do the thing")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Summary != "Implemented the login form." {
		t.Errorf("Summary = %q", outcome.Summary)
	}
	if fake.lastCmd != "claude" {
		t.Errorf("expected claude CLI, got %q", fake.lastCmd)
	}
	if fake.workDir != "/repo" {
		t.Errorf("workDir = %q, want /repo", fake.workDir)
	}
	// Prompt must be the final -p argument.
	n := len(fake.args)
	if n < 2 || fake.args[n-2] != "-p" || fake.args[n-1] != "do the thing" {
		t.Errorf("prompt not passed via trailing -p: %v", fake.args)
	}
}

func TestCLIRunnerRunModelFlag(t *testing.T) {
	fake := &fakeCommandRunner{output: []byte("ok")}
	runner := NewCLIRunner(CLIRunnerConfig{Model: "claude-sonnet-4-20250514", Runner: fake})

	if _, err := runner.Run(context.Background(), "x"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	joined := strings.Join(fake.args, " ")
	if !strings.Contains(joined, "--model claude-sonnet-4-20250514") {
		t.Errorf("model flag missing from args: %v", fake.args)
	}
}

func TestCLIRunnerRunFailure(t *testing.T) {
	fake := &fakeCommandRunner{output: []byte("boom"), err: errors.New("exit status 1")}
	runner := NewCLIRunner(CLIRunnerConfig{Runner: fake})

	outcome, err := runner.Run(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error from failed subprocess")
	}
	if outcome != nil {
		t.Errorf("outcome should be nil on failure, got %+v", outcome)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry subprocess output: %v", err)
	}
}

func TestCLIRunnerEmptyOutput(t *testing.T) {
	fake := &fakeCommandRunner{output: []byte("   \n")}
	runner := NewCLIRunner(CLIRunnerConfig{Runner: fake})

	outcome, err := runner.Run(context.Background(), "x")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Summary == "" {
		t.Error("summary should never be empty on success")
	}
}

func TestCLIFactoryNewRunner(t *testing.T) {
	factory := NewCLIFactory(CLIRunnerConfig{WorkDir: "/repo"})
	a := factory.NewRunner()
	b := factory.NewRunner()
	if a == b {
		t.Error("factory should create distinct runner instances")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("hello world", 5); got != "hello..." {
		t.Errorf("truncate long = %q", got)
	}
}
