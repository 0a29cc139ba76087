package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stride-cli/stride/internal/config"
	"github.com/stride-cli/stride/internal/git"
	"github.com/stride-cli/stride/internal/orchestrator"
	"github.com/stride-cli/stride/internal/plan"
	"github.com/stride-cli/stride/internal/signals"
	"github.com/stride-cli/stride/internal/state"
	"github.com/stride-cli/stride/internal/tracker"
)

var (
	runHeadless   bool
	runBaseBranch string
	runMaxAgents  int
	runBackend    string
	runModel      string
	runTaskLevel  bool
)

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Execute a phased plan with coding agents",
	Long: `Execute the phases of a plan file in order.

Each phase runs according to its execution policy:
  - Parallel phases dispatch every item at once, each on its own
    branch with its own agent. One item's failure never blocks its
    siblings.
  - Sequential phases run items in order on one shared branch and
    stop at the first failure.

The run stops after the first phase that does not fully succeed, so
later phases never build on incomplete work.

Interrupting with Ctrl-C (or 'stride stop' from another terminal)
requests a clean stop: items already running finish, nothing new is
dispatched.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Run without TUI (plain log output)")
	runCmd.Flags().StringVar(&runBaseBranch, "base-branch", "", "Branch to cut work branches from (default: repository default branch)")
	runCmd.Flags().IntVar(&runMaxAgents, "max-agents", 0, "Maximum concurrent agents (default from config)")
	runCmd.Flags().StringVar(&runBackend, "backend", "", "Agent backend: cli or api (default from config)")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model override for the agent backend")
	runCmd.Flags().BoolVar(&runTaskLevel, "task-level", false, "Run eligible features as one agent per task")
}

func runPlan(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("PANIC in run: %v", r)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunFlags(cmd, cfg)

	pl, err := plan.Load(args[0])
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	factory, err := buildAgentFactory(cfg, cwd)
	if err != nil {
		return err
	}
	pool := orchestrator.NewAgentPool(orchestrator.PoolConfig{
		MaxAgents:  cfg.Agents.Max,
		Factory:    factory,
		RunTimeout: cfg.Agents.RunTimeout,
	})
	branches := git.NewRunner(cwd)

	db, err := state.OpenProject(cwd)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate state database: %w", err)
	}

	sig, err := signals.NewWatcher(cwd)
	if err != nil {
		return fmt.Errorf("set up signal watcher: %w", err)
	}
	defer sig.Close()
	sig.Clear()

	var trk tracker.Client
	if cfg.Tracker.BaseURL != "" {
		trk = tracker.NewHTTPClient(tracker.HTTPClientConfig{
			BaseURL: cfg.Tracker.BaseURL,
			APIKey:  cfg.Tracker.APIKey,
			Timeout: cfg.Tracker.Timeout,
		})
	}

	sessionID := uuid.New().String()
	session := &state.Session{
		ID:         sessionID,
		PlanName:   planLabel(pl, args[0]),
		BaseBranch: cfg.Git.BaseBranch,
	}
	if err := db.CreateSession(session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	executor := orchestrator.NewPhaseExecutor(orchestrator.ExecutorConfig{
		Pool:            pool,
		Branches:        branches,
		Tracker:         trk,
		SessionID:       sessionID,
		BaseBranch:      cfg.Git.BaseBranch,
		TaskLevelAgents: cfg.Agents.TaskLevel,
		DoneStatusID:    cfg.Agents.DoneStatusID,
		Hooks:           cfg.Hooks,
		RepoPath:        cwd,
		StopRequested:   sig.StopRequested,
	})

	// Ctrl-C requests a clean stop; a second Ctrl-C kills the process.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nstop requested: finishing in-flight items")
		_ = sig.RequestStop()
		signal.Stop(sigCh)
	}()

	ctx := context.Background()

	var outcome runOutcome
	if runHeadless {
		outcome = runHeadlessLoop(ctx, executor, pl, db, sessionID, sig)
	} else {
		outcome = runWithTUI(ctx, executor, pl, db, sessionID, sig)
	}

	if err := db.FinishSession(sessionID, outcome.status); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording session end: %v\n", err)
	}

	switch outcome.status {
	case state.SessionStatusCompleted:
		return nil
	case state.SessionStatusStopped:
		fmt.Printf("run stopped after %d of %d phases\n", outcome.phasesRun, len(pl.Phases))
		return nil
	default:
		return fmt.Errorf("run failed in phase %d", outcome.failedPhase)
	}
}

// applyRunFlags lets command-line flags override loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if runMaxAgents > 0 {
		cfg.Agents.Max = runMaxAgents
	}
	if runBackend != "" {
		cfg.Agents.Backend = runBackend
	}
	if runModel != "" {
		cfg.Agents.Model = runModel
	}
	if runBaseBranch != "" {
		cfg.Git.BaseBranch = runBaseBranch
	}
	if cmd.Flags().Changed("task-level") {
		cfg.Agents.TaskLevel = runTaskLevel
	}
}

// planLabel names the session after the plan, falling back to the file.
func planLabel(pl *plan.Plan, path string) string {
	if pl.Name != "" {
		return pl.Name
	}
	return path
}

// runOutcome summarizes a whole run for session bookkeeping.
type runOutcome struct {
	status      string
	phasesRun   int
	failedPhase int
}

// executePhases drives the plan's phases in order, journaling each
// result. It stops at the first phase that does not fully succeed and
// honors stop requests between phases.
func executePhases(ctx context.Context, executor *orchestrator.PhaseExecutor, pl *plan.Plan, db *state.DB, sessionID string, sig *signals.Watcher) runOutcome {
	outcome := runOutcome{status: state.SessionStatusCompleted}

	for i := range pl.Phases {
		if sig.StopRequested() {
			outcome.status = state.SessionStatusStopped
			return outcome
		}

		phase := &pl.Phases[i]
		result, err := executor.ExecutePhase(ctx, phase)
		if err != nil {
			// Only structurally invalid phases error; plan validation
			// makes this unreachable for loaded plans.
			outcome.status = state.SessionStatusFailed
			outcome.failedPhase = phase.Order
			return outcome
		}
		outcome.phasesRun++
		journalPhase(db, sessionID, phase.Order, result)

		if !result.Success {
			if sig.StopRequested() {
				outcome.status = state.SessionStatusStopped
			} else {
				outcome.status = state.SessionStatusFailed
				outcome.failedPhase = phase.Order
			}
			return outcome
		}
	}
	return outcome
}

// journalPhase writes a phase result and its item results to the local
// session journal. Journal failures are reported but never fatal.
func journalPhase(db *state.DB, sessionID string, order int, result *orchestrator.PhaseResult) {
	err := db.RecordPhase(&state.PhaseRecord{
		SessionID: sessionID,
		Order:     order,
		Success:   result.Success,
		Completed: len(result.CompletedItems),
		Failed:    len(result.FailedItems),
		Duration:  result.Duration,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: journaling phase %d: %v\n", order, err)
	}

	for i := range result.ItemResults {
		r := &result.ItemResults[i]
		errText := ""
		if r.Error != nil {
			errText = r.Error.Error()
		}
		err := db.RecordItem(&state.ItemRecord{
			SessionID:  sessionID,
			Identifier: r.Identifier,
			Type:       string(r.Type),
			Branch:     r.Branch,
			Success:    r.Success,
			Error:      errText,
			Duration:   r.Duration,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: journaling item %s: %v\n", r.Identifier, err)
		}
	}
}
