// Package git provides branch operations against the local working copy.
package git

// BranchManager defines the branch lifecycle operations the executor
// needs. All operations are local; no remote interaction happens here.
type BranchManager interface {
	// CurrentBranch returns the name of the currently checked-out branch.
	CurrentBranch() (string, error)
	// DefaultBranch returns the repository's default branch name.
	DefaultBranch() (string, error)
	// CreateBranch creates a new branch from the given base without
	// switching to it. If base is empty, the branch is created from the
	// current HEAD.
	CreateBranch(name, base string) error
	// Checkout switches to the specified branch.
	Checkout(name string) error
	// BranchExists returns true if the branch exists locally.
	BranchExists(name string) (bool, error)
	// LatestCommitHash returns the full hash of the current HEAD commit.
	LatestCommitHash() (string, error)
	// ModifiedFiles returns the paths with uncommitted modifications.
	ModifiedFiles() ([]string, error)
}
