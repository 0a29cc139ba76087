package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stride-cli/stride/internal/state"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent sessions and their outcomes",
	Long: `Display the state of recent stride sessions in this repository.

Shows the active session if one is running, then recent sessions with
their phase and item outcomes from the local journal.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 5, "Number of recent sessions to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	dbPath := state.ProjectDBPath(cwd)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No sessions recorded. Run 'stride run <plan.yaml>' to start.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	sessions, err := db.ListSessions(statusLimit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded. Run 'stride run <plan.yaml>' to start.")
		return nil
	}

	for i := range sessions {
		if i > 0 {
			fmt.Println()
		}
		printSession(db, &sessions[i])
	}
	return nil
}

func printSession(db *state.DB, s *state.Session) {
	header := fmt.Sprintf("%s  %s", s.StartedAt.Local().Format("2006-01-02 15:04"), s.PlanName)
	switch s.Status {
	case state.SessionStatusActive:
		color.Cyan("%s  [running]", header)
	case state.SessionStatusCompleted:
		color.Green("%s  [completed]", header)
	case state.SessionStatusStopped:
		color.Yellow("%s  [stopped]", header)
	default:
		color.Red("%s  [%s]", header, s.Status)
	}

	phases, err := db.ListPhases(s.ID)
	if err != nil {
		fmt.Printf("  (journal unreadable: %v)\n", err)
		return
	}
	for _, p := range phases {
		mark := color.GreenString("✓")
		if !p.Success {
			mark = color.RedString("✗")
		}
		fmt.Printf("  %s phase %d: %d done, %d failed (%s)\n",
			mark, p.Order, p.Completed, p.Failed, p.Duration.Round(time.Second))
	}

	items, err := db.ListItems(s.ID)
	if err != nil {
		return
	}
	for _, it := range items {
		if it.Success {
			continue
		}
		fmt.Printf("    %s %s: %s\n", color.RedString("✗"), it.Identifier, it.Error)
	}
}
