package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/stride-cli/stride/internal/orchestrator"
	"github.com/stride-cli/stride/internal/plan"
	"github.com/stride-cli/stride/internal/signals"
	"github.com/stride-cli/stride/internal/state"
)

// runHeadlessLoop drives the plan with plain line output instead of
// the dashboard.
func runHeadlessLoop(ctx context.Context, executor *orchestrator.PhaseExecutor, pl *plan.Plan, db *state.DB, sessionID string, sig *signals.Watcher) runOutcome {
	executor.Subscribe(printEvent)
	return executePhases(ctx, executor, pl, db, sessionID, sig)
}

// printEvent renders one executor event as a log line.
func printEvent(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventPhaseStart:
		if ev.Phase != nil {
			color.Cyan("phase %d: %d item(s)", ev.Phase.Order, len(ev.Phase.Items))
		}

	case orchestrator.EventItemStart:
		if ev.Item != nil {
			fmt.Printf("  %s %s\n", color.YellowString("▸"), ev.Item.Identifier)
		}

	case orchestrator.EventItemComplete:
		if ev.Item != nil {
			line := fmt.Sprintf("  %s %s", color.GreenString("✓"), ev.Item.Identifier)
			if ev.ItemResult != nil && ev.ItemResult.Duration > 0 {
				line += color.HiBlackString(" (%s)", ev.ItemResult.Duration.Round(time.Second))
			}
			fmt.Println(line)
		}

	case orchestrator.EventItemError:
		if ev.Item != nil {
			fmt.Printf("  %s %s: %v\n", color.RedString("✗"), ev.Item.Identifier, ev.Err)
		}

	case orchestrator.EventPhaseComplete:
		if ev.PhaseResult == nil {
			return
		}
		if ev.PhaseResult.Success {
			color.Green("phase complete: %d item(s) done", len(ev.PhaseResult.CompletedItems))
		} else {
			color.Red("phase failed: %d done, %d failed",
				len(ev.PhaseResult.CompletedItems), len(ev.PhaseResult.FailedItems))
		}
	}
}
