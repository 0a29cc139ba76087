package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// ExecRunner implements BranchManager using the git CLI via exec.Command.
type ExecRunner struct {
	repoPath string
}

// NewRunner creates a new git runner for the repository at the given path.
func NewRunner(repoPath string) *ExecRunner {
	return &ExecRunner{repoPath: repoPath}
}

// run executes a git command and returns its trimmed output.
func (r *ExecRunner) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// runSilent executes a git command and ignores output.
func (r *ExecRunner) runSilent(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return nil
}

// CurrentBranch returns the name of the currently checked-out branch.
func (r *ExecRunner) CurrentBranch() (string, error) {
	return r.run("rev-parse", "--abbrev-ref", "HEAD")
}

// DefaultBranch returns the repository's default branch name.
// It prefers the origin HEAD ref, then falls back to main or master.
func (r *ExecRunner) DefaultBranch() (string, error) {
	if out, err := r.run("symbolic-ref", "--short", "refs/remotes/origin/HEAD"); err == nil {
		return strings.TrimPrefix(out, "origin/"), nil
	}
	for _, name := range []string{"main", "master"} {
		exists, err := r.BranchExists(name)
		if err != nil {
			return "", err
		}
		if exists {
			return name, nil
		}
	}
	return r.CurrentBranch()
}

// CreateBranch creates a new branch from the given base without
// switching the working copy to it.
func (r *ExecRunner) CreateBranch(name, base string) error {
	if base == "" {
		return r.runSilent("branch", name)
	}
	return r.runSilent("branch", name, base)
}

// Checkout switches to the specified branch.
func (r *ExecRunner) Checkout(name string) error {
	return r.runSilent("checkout", name)
}

// BranchExists returns true if the branch exists locally.
func (r *ExecRunner) BranchExists(name string) (bool, error) {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	cmd.Dir = r.repoPath
	err := cmd.Run()
	if err != nil {
		// Exit code 1 means the branch doesn't exist (not an error)
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, fmt.Errorf("check branch exists: %w", err)
	}
	return true, nil
}

// LatestCommitHash returns the full hash of the current HEAD commit.
func (r *ExecRunner) LatestCommitHash() (string, error) {
	return r.run("rev-parse", "HEAD")
}

// ModifiedFiles returns the paths with uncommitted modifications.
func (r *ExecRunner) ModifiedFiles() ([]string, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		// Porcelain lines are "XY path"; strip the two status columns.
		if len(line) > 3 {
			files = append(files, strings.TrimSpace(line[3:]))
		}
	}
	return files, nil
}

// Verify ExecRunner implements BranchManager at compile time.
var _ BranchManager = (*ExecRunner)(nil)
