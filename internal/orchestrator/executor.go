package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/stride-cli/stride/internal/exec"
	"github.com/stride-cli/stride/internal/git"
	"github.com/stride-cli/stride/internal/tracker"
	"github.com/stride-cli/stride/pkg/models"
)

// defaultDoneStatusID is the platform status written to a feature when
// all its task-level agents succeed.
const defaultDoneStatusID = "done"

// Pool is the slice of AgentPool behavior the executor depends on.
// Narrowing the dependency keeps the executor testable with a fake.
type Pool interface {
	SpawnAgent(item *models.ExecutionItem, branch string) (*models.Agent, error)
	StartAgent(ctx context.Context, agentID, prompt string) (*AgentResult, error)
	RemoveAgent(agentID string)
}

// Verify AgentPool satisfies the executor's Pool dependency.
var _ Pool = (*AgentPool)(nil)

// ExecutorConfig contains configuration options for the PhaseExecutor.
type ExecutorConfig struct {
	// Pool supplies agent leases. Required.
	Pool Pool
	// Branches performs branch operations. Required.
	Branches git.BranchManager
	// Tracker is the external tracking client. Optional; nil disables
	// all tracking calls.
	Tracker tracker.Client
	// SessionID is the correlation id threaded into tracking calls.
	SessionID string
	// BaseBranch overrides the branch new work branches are cut from.
	// Empty means the repository's default branch.
	BaseBranch string
	// TaskLevelAgents fans eligible feature items out into their
	// constituent tasks, running one agent per task.
	TaskLevelAgents bool
	// DoneStatusID is the platform status written by the task-level
	// feature completion marking. Empty uses "done".
	DoneStatusID string
	// Hooks are fired after qualifying feature completions.
	Hooks PostFeatureHooks
	// Commands runs external processes for hooks. Optional; nil uses a
	// real exec runner.
	Commands exec.CommandRunner
	// RepoPath is the working repository, used as the hook working dir.
	RepoPath string
	// StopRequested, when non-nil, is consulted before each item is
	// dispatched. A true return prevents further items from starting;
	// in-flight agents are never cancelled.
	StopRequested func() bool
}

// PhaseExecutor drives the completion of one phase at a time.
type PhaseExecutor struct {
	pool     Pool
	branches git.BranchManager
	tracker  tracker.Client
	emitter  *Emitter
	hooks    hookTrigger
	hooksCfg PostFeatureHooks
	stop     func() bool

	// mu protects the runtime-mutable fields below.
	mu              sync.RWMutex
	sessionID       string
	baseBranch      string
	taskLevelAgents bool
	doneStatusID    string
}

// NewPhaseExecutor creates a new PhaseExecutor.
func NewPhaseExecutor(cfg ExecutorConfig) *PhaseExecutor {
	commands := cfg.Commands
	if commands == nil {
		commands = exec.NewRunner()
	}
	doneStatus := cfg.DoneStatusID
	if doneStatus == "" {
		doneStatus = defaultDoneStatusID
	}
	return &PhaseExecutor{
		pool:            cfg.Pool,
		branches:        cfg.Branches,
		tracker:         cfg.Tracker,
		emitter:         NewEmitter(),
		hooks:           hookTrigger{runner: commands, repoPath: cfg.RepoPath},
		hooksCfg:        cfg.Hooks,
		stop:            cfg.StopRequested,
		sessionID:       cfg.SessionID,
		baseBranch:      cfg.BaseBranch,
		taskLevelAgents: cfg.TaskLevelAgents,
		doneStatusID:    doneStatus,
	}
}

// Subscribe registers a listener for executor events.
func (e *PhaseExecutor) Subscribe(l Listener) {
	e.emitter.Subscribe(l)
}

// SetSessionID changes the correlation id for subsequent tracking calls.
func (e *PhaseExecutor) SetSessionID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionID = id
}

// SetBaseBranch changes the branch new work branches are cut from.
func (e *PhaseExecutor) SetBaseBranch(branch string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseBranch = branch
}

// SetTaskLevelAgents toggles task-granularity execution for features.
func (e *PhaseExecutor) SetTaskLevelAgents(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taskLevelAgents = enabled
}

// ExecutePhase runs every item of the phase according to its execution
// policy and returns the aggregate result. It returns an error only for
// a structurally invalid phase; item failures are reported through the
// PhaseResult, never as an error.
func (e *PhaseExecutor) ExecutePhase(ctx context.Context, phase *models.ExecutionPhase) (*PhaseResult, error) {
	if phase == nil {
		return nil, fmt.Errorf("nil phase")
	}
	if err := phase.Validate(); err != nil {
		return nil, fmt.Errorf("invalid phase: %w", err)
	}

	started := time.Now()
	e.emitter.Emit(Event{Type: EventPhaseStart, Phase: phase})
	e.track("emitSessionEvent", func() error {
		return e.tracker.EmitSessionEvent(tracker.SessionEvent{
			SessionID: e.currentSessionID(),
			Type:      string(EventPhaseStart),
			Payload:   map[string]any{"phase": phase.Order, "items": len(phase.Items)},
		})
	})

	var itemResults []ItemResult
	if phase.Sequential() {
		itemResults = e.executeSequential(ctx, phase)
	} else {
		itemResults = e.executeParallel(ctx, phase)
	}

	result := aggregate(phase, itemResults)
	result.Duration = time.Since(started)

	e.emitter.Emit(Event{Type: EventPhaseComplete, Phase: phase, PhaseResult: result})
	e.track("emitSessionEvent", func() error {
		return e.tracker.EmitSessionEvent(tracker.SessionEvent{
			SessionID: e.currentSessionID(),
			Type:      string(EventPhaseComplete),
			Payload: map[string]any{
				"phase":     phase.Order,
				"success":   result.Success,
				"completed": len(result.CompletedItems),
				"failed":    len(result.FailedItems),
			},
		})
	})

	return result, nil
}

// executeParallel dispatches every item on its own branch and lets the
// runtime interleave the pipelines. One item's failure never cancels or
// blocks siblings; each dispatched item yields exactly one result.
func (e *PhaseExecutor) executeParallel(ctx context.Context, phase *models.ExecutionPhase) []ItemResult {
	base := e.resolveBase()
	slots := make([]*ItemResult, len(phase.Items))

	var wg sync.WaitGroup
	for idx := range phase.Items {
		if e.stopRequested() {
			log.Printf("[executor] stop requested, not dispatching remaining items of phase %d", phase.Order)
			break
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			item := &phase.Items[idx]
			branch := git.GenerateBranchName(item.Identifier, item.Title)
			slots[idx] = e.runItem(ctx, item, branch, base, true)
		}(idx)
	}
	wg.Wait()

	results := make([]ItemResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// executeSequential creates one shared branch for the phase and runs
// items strictly in order, stopping at the first failure. Items after
// the failure are never attempted and produce no result.
func (e *PhaseExecutor) executeSequential(ctx context.Context, phase *models.ExecutionPhase) []ItemResult {
	branch := git.PhaseBranchName(phase.Order)
	if err := e.preparePhaseBranch(branch); err != nil {
		// The shared branch is a precondition for every item; its
		// failure is recorded against the first item, like a spawn
		// failure, and nothing is attempted.
		first := &phase.Items[0]
		log.Printf("[executor] phase %d branch setup failed: %v", phase.Order, err)
		failed := ItemResult{
			Identifier: first.Identifier,
			Type:       first.Type,
			Branch:     branch,
			Error:      err,
		}
		e.emitter.Emit(Event{Type: EventItemError, Item: first, Err: err})
		return []ItemResult{failed}
	}

	var results []ItemResult
	for idx := range phase.Items {
		if e.stopRequested() {
			log.Printf("[executor] stop requested, skipping remaining items of phase %d", phase.Order)
			break
		}
		item := &phase.Items[idx]
		res := e.runItem(ctx, item, branch, "", false)
		results = append(results, *res)
		if !res.Success {
			break
		}
	}
	return results
}

// preparePhaseBranch creates and checks out the shared sequential
// branch, reusing it if a prior run already created it.
func (e *PhaseExecutor) preparePhaseBranch(branch string) error {
	exists, err := e.branches.BranchExists(branch)
	if err != nil {
		return err
	}
	if !exists {
		if err := e.branches.CreateBranch(branch, e.resolveBase()); err != nil {
			return err
		}
	}
	return e.branches.Checkout(branch)
}

// runItem executes the full per-item sequence on the given branch.
// createBranch is true on the parallel path, where each item owns its
// branch; the sequential path shares one pre-created branch.
func (e *PhaseExecutor) runItem(ctx context.Context, item *models.ExecutionItem, branch, base string, createBranch bool) *ItemResult {
	e.emitter.Emit(Event{Type: EventItemStart, Item: item})
	e.track("startWork", func() error {
		_, err := e.tracker.StartWork(item.Type, item.ID, tracker.StartWorkOptions{SessionID: e.currentSessionID()})
		return err
	})

	result := &ItemResult{
		Identifier: item.Identifier,
		Type:       item.Type,
		Branch:     branch,
	}

	if createBranch {
		if err := e.branches.CreateBranch(branch, base); err != nil {
			result.Error = fmt.Errorf("create branch %s: %w", branch, err)
			e.emitter.Emit(Event{Type: EventItemError, Item: item, Err: result.Error})
			return result
		}
	}

	if e.taskLevelEligible(item) {
		return e.runFeatureAsTasks(ctx, item, branch, result)
	}

	agentResult, err := e.runSingleAgent(ctx, item, branch)
	if err != nil {
		// Spawn failure: contained to this item, never retried.
		result.Error = err
		e.emitter.Emit(Event{Type: EventItemError, Item: item, Err: err})
		return result
	}

	result.Duration = agentResult.Duration
	if !agentResult.Success {
		result.Error = agentResult.Error
		e.emitter.Emit(Event{Type: EventItemError, Item: item, Err: agentResult.Error})
		return result
	}

	result.Success = true
	e.completeItem(item, agentResult.Summary)
	e.emitter.Emit(Event{Type: EventItemComplete, Item: item, ItemResult: result})
	return result
}

// runSingleAgent leases one agent for the item, runs it, and releases
// the lease. The returned error is a spawn failure; execution failure
// is encoded in the AgentResult.
func (e *PhaseExecutor) runSingleAgent(ctx context.Context, item *models.ExecutionItem, branch string) (*AgentResult, error) {
	agentModel, err := e.pool.SpawnAgent(item, branch)
	if err != nil {
		return nil, err
	}
	defer e.pool.RemoveAgent(agentModel.ID)

	prompt := buildTaskPrompt(item, branch)
	agentResult, err := e.pool.StartAgent(ctx, agentModel.ID, prompt)
	if err != nil {
		// Unknown agent id here is a pool bookkeeping bug; fold it into
		// the spawn-failure taxonomy rather than crashing the phase.
		return nil, &SpawnError{Identifier: item.Identifier, Err: err}
	}
	return agentResult, nil
}

// runFeatureAsTasks executes a feature at task granularity. Every task
// gets its own agent on the feature's branch; the feature's done status
// is written back iff all tasks succeed. On any task failure the
// feature is left exactly as-is.
func (e *PhaseExecutor) runFeatureAsTasks(ctx context.Context, item *models.ExecutionItem, branch string, result *ItemResult) *ItemResult {
	list, err := e.listTasks(item.ID)
	if err != nil || list == nil || len(list.Data) == 0 {
		if err != nil {
			log.Printf("[executor] listing tasks for feature %s failed, running feature-level agent: %v", item.Identifier, err)
		}
		// No visible sub-tasks: run the feature as a single agent.
		agentResult, spawnErr := e.runSingleAgent(ctx, item, branch)
		if spawnErr != nil {
			result.Error = spawnErr
			e.emitter.Emit(Event{Type: EventItemError, Item: item, Err: spawnErr})
			return result
		}
		result.Duration = agentResult.Duration
		if !agentResult.Success {
			result.Error = agentResult.Error
			e.emitter.Emit(Event{Type: EventItemError, Item: item, Err: agentResult.Error})
			return result
		}
		result.Success = true
		e.completeItem(item, agentResult.Summary)
		e.emitter.Emit(Event{Type: EventItemComplete, Item: item, ItemResult: result})
		return result
	}

	allSucceeded := true
	succeeded := 0
	var firstErr error
	for i := range list.Data {
		task := &list.Data[i]
		taskItem := &models.ExecutionItem{
			Type:       models.ItemTypeTask,
			ID:         task.ID,
			Identifier: taskIdentifier(task),
			Title:      task.Title,
		}

		e.track("startWork", func() error {
			_, err := e.tracker.StartWork(models.ItemTypeTask, task.ID, tracker.StartWorkOptions{SessionID: e.currentSessionID()})
			return err
		})

		agentModel, spawnErr := e.pool.SpawnAgent(taskItem, branch)
		if spawnErr != nil {
			log.Printf("[executor] task %s of feature %s failed to spawn: %v", taskItem.Identifier, item.Identifier, spawnErr)
			allSucceeded = false
			if firstErr == nil {
				firstErr = spawnErr
			}
			continue
		}

		prompt := buildSubTaskPrompt(item, task, branch)
		agentResult, startErr := e.pool.StartAgent(ctx, agentModel.ID, prompt)
		e.pool.RemoveAgent(agentModel.ID)
		if startErr != nil {
			allSucceeded = false
			if firstErr == nil {
				firstErr = startErr
			}
			continue
		}

		result.Duration += agentResult.Duration
		if !agentResult.Success {
			allSucceeded = false
			if firstErr == nil {
				firstErr = agentResult.Error
			}
			continue
		}

		e.track("completeWork", func() error {
			_, err := e.tracker.CompleteWork(models.ItemTypeTask, task.ID, tracker.CompleteWorkOptions{Summary: agentResult.Summary})
			return err
		})

		succeeded++
		percent := succeeded * 100 / len(list.Data)
		e.track("logProgress", func() error {
			return e.tracker.LogProgress(models.ItemTypeFeature, item.ID, tracker.ProgressOptions{
				Message:         fmt.Sprintf("completed task %s (%d/%d)", taskItem.Identifier, succeeded, len(list.Data)),
				PercentComplete: &percent,
			})
		})
	}

	if !allSucceeded {
		// All-or-nothing: no status write, the feature stays untouched.
		result.Error = firstErr
		e.emitter.Emit(Event{Type: EventItemError, Item: item, Err: firstErr})
		return result
	}

	e.track("updateFeature", func() error {
		return e.tracker.UpdateFeature(item.ID, tracker.FeatureUpdate{StatusID: e.currentDoneStatusID()})
	})
	e.hooks.fire(e.hooksCfg.BarneyAudit, item)

	result.Success = true
	e.emitter.Emit(Event{Type: EventItemComplete, Item: item, ItemResult: result})
	return result
}

// completeItem performs the best-effort completion write-back for a
// successfully executed item.
func (e *PhaseExecutor) completeItem(item *models.ExecutionItem, summary string) {
	e.track("completeWork", func() error {
		opts := tracker.CompleteWorkOptions{Summary: summary}
		if hash, err := e.branches.LatestCommitHash(); err == nil {
			opts.CommitHash = hash
		}
		if files, err := e.branches.ModifiedFiles(); err == nil {
			opts.ModifiedFiles = files
		}
		_, err := e.tracker.CompleteWork(item.Type, item.ID, opts)
		return err
	})
}

// aggregate computes the phase-level outcome from the item results.
// Success requires every item to have been attempted and succeeded.
func aggregate(phase *models.ExecutionPhase, itemResults []ItemResult) *PhaseResult {
	result := &PhaseResult{ItemResults: itemResults}
	for i := range itemResults {
		r := &itemResults[i]
		if r.Success {
			result.CompletedItems = append(result.CompletedItems, r.Identifier)
		} else {
			result.FailedItems = append(result.FailedItems, r.Identifier)
		}
	}
	result.Success = len(result.FailedItems) == 0 && len(itemResults) == len(phase.Items)
	return result
}

// track wraps a tracking call in the log-and-continue pattern: errors
// and panics from the external platform never affect execution.
func (e *PhaseExecutor) track(op string, fn func() error) {
	if e.tracker == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[executor] tracking %s panicked (continuing): %v", op, r)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("[executor] %v (continuing)", &TrackingError{Op: op, Err: err})
	}
}

// listTasks fetches a feature's tasks; unlike other tracking calls the
// error is surfaced so the caller can fall back to feature-level mode.
func (e *PhaseExecutor) listTasks(featureID string) (*tracker.TaskList, error) {
	if e.tracker == nil {
		return nil, nil
	}
	return e.tracker.ListTasks(featureID)
}

func (e *PhaseExecutor) taskLevelEligible(item *models.ExecutionItem) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.taskLevelAgents && item.IsFeature() && item.EpicID != ""
}

func (e *PhaseExecutor) currentSessionID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessionID
}

func (e *PhaseExecutor) currentDoneStatusID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doneStatusID
}

func (e *PhaseExecutor) resolveBase() string {
	e.mu.RLock()
	base := e.baseBranch
	e.mu.RUnlock()
	if base != "" {
		return base
	}
	defaultBranch, err := e.branches.DefaultBranch()
	if err != nil {
		log.Printf("[executor] resolving default branch failed, using HEAD: %v", err)
		return ""
	}
	return defaultBranch
}

func (e *PhaseExecutor) stopRequested() bool {
	return e.stop != nil && e.stop()
}

// taskIdentifier prefers the human-readable code, falling back to the
// opaque id when the platform did not assign one.
func taskIdentifier(task *tracker.Item) string {
	if task.Identifier != "" {
		return task.Identifier
	}
	return task.ID
}
