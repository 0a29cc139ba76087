package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	initForce    bool
	initWithPlan bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a repository for stride",
	Long: `Initialize a directory for use with Stride.

Creates the .stride directory structure and, optionally, a starter
plan file and project config.

Examples:
  stride init               # Initialize current directory
  stride init ./myproject   # Initialize specific directory
  stride init --with-plan   # Also create an example plan.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if already set up")
	initCmd.Flags().BoolVar(&initWithPlan, "with-plan", false, "Create an example plan.yaml")
}

const exampleProjectConfig = `# Stride project configuration.
# Values here override ~/.config/stride/config.yaml.
agents:
  max: 3
  backend: cli
# tracker:
#   base_url: http://localhost:3400
`

const examplePlan = `version: 1
name: example
phases:
  - order: 1
    can_run_in_parallel: true
    items:
      - type: task
        id: task-1
        identifier: EX-1
        title: First independent task
      - type: task
        id: task-2
        identifier: EX-2
        title: Second independent task
  - order: 2
    can_run_in_parallel: false
    items:
      - type: task
        id: task-3
        identifier: EX-3
        title: Task that builds on phase 1
`

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	strideDir := filepath.Join(absPath, ".stride")
	if _, err := os.Stat(strideDir); err == nil && !initForce {
		fmt.Println("Already initialized. Use --force to reinitialize.")
		return nil
	}

	for _, dir := range []string{strideDir, filepath.Join(strideDir, "signals")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	color.Green("✓ created .stride directory")

	configPath := filepath.Join(absPath, ".stride.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) || initForce {
		if err := os.WriteFile(configPath, []byte(exampleProjectConfig), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", configPath, err)
		}
		color.Green("✓ created .stride.yaml")
	}

	if initWithPlan {
		planPath := filepath.Join(absPath, "plan.yaml")
		if _, err := os.Stat(planPath); os.IsNotExist(err) || initForce {
			if err := os.WriteFile(planPath, []byte(examplePlan), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", planPath, err)
			}
			color.Green("✓ created plan.yaml")
		}
	}

	fmt.Println()
	fmt.Println("Next steps:")
	if initWithPlan {
		fmt.Println("  stride run plan.yaml")
	} else {
		fmt.Println("  write a plan file, then: stride run <plan.yaml>")
	}
	return nil
}
