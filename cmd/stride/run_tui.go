package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stride-cli/stride/internal/orchestrator"
	"github.com/stride-cli/stride/internal/plan"
	"github.com/stride-cli/stride/internal/signals"
	"github.com/stride-cli/stride/internal/state"
	"github.com/stride-cli/stride/internal/tui"
)

// runWithTUI drives the plan with the dashboard attached. The executor
// runs in the background; its events reach the TUI through a bridge.
func runWithTUI(ctx context.Context, executor *orchestrator.PhaseExecutor, pl *plan.Plan, db *state.DB, sessionID string, sig *signals.Watcher) runOutcome {
	// Suppress log output while the TUI owns the terminal.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	bridge := tui.NewBridge()
	executor.Subscribe(bridge.Listener())

	model := tui.NewModel(tui.Options{
		PlanName:    pl.Name,
		TotalPhases: len(pl.Phases),
		Events:      bridge.Events(),
		OnStop:      sig.RequestStop,
	})
	program := tea.NewProgram(model)

	outcomeCh := make(chan runOutcome, 1)
	go func() {
		outcomeCh <- executePhases(ctx, executor, pl, db, sessionID, sig)
		bridge.Close()
	}()

	if _, err := program.Run(); err != nil {
		// The terminal is unusable but the run itself is fine; keep
		// executing without a display.
		fmt.Fprintf(os.Stderr, "warning: TUI failed, continuing headless: %v\n", err)
	}

	return <-outcomeCh
}
