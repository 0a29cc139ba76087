package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// CheckClaudeCLI verifies that the 'claude' CLI is available in PATH.
// Returns an error with installation instructions if not found.
func CheckClaudeCLI() error {
	_, err := exec.LookPath("claude")
	if err != nil {
		return fmt.Errorf("claude CLI not found in PATH\n\n" +
			"Stride's cli agent backend requires the Claude Code CLI.\n\n" +
			"Install it with:\n" +
			"  npm install -g @anthropic-ai/claude-code\n\n" +
			"or switch to the API backend with:\n" +
			"  stride run <plan> --backend api")
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Phase-based agent execution engine",
	Long: `Stride executes phased development plans with coding agents.

A plan is an ordered list of phases. Each phase holds work items
(features and tasks) and an execution policy: parallel phases run every
item on its own branch with its own agent, sequential phases run items
in order on one shared branch and stop at the first failure.

Item status is mirrored to an external tracking platform when one is
configured; tracking failures never affect execution.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
