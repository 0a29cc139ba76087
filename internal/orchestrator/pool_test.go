package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stride-cli/stride/internal/agent"
	"github.com/stride-cli/stride/pkg/models"
)

// stubRunner returns a canned outcome or error.
type stubRunner struct {
	outcome *agent.Outcome
	err     error
}

func (r *stubRunner) Run(ctx context.Context, prompt string) (*agent.Outcome, error) {
	return r.outcome, r.err
}

// stubFactory hands out the same stub runner for every lease.
type stubFactory struct {
	runner agent.Runner
}

func (f *stubFactory) NewRunner() agent.Runner {
	return f.runner
}

func okFactory() agent.Factory {
	return &stubFactory{runner: &stubRunner{outcome: &agent.Outcome{Summary: "done"}}}
}

func testItem(identifier string) *models.ExecutionItem {
	return &models.ExecutionItem{
		Type:       models.ItemTypeTask,
		ID:         "id-" + identifier,
		Identifier: identifier,
		Title:      "title " + identifier,
	}
}

func TestSpawnAgentAssignsLease(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 2, Factory: okFactory()})

	a, err := pool.SpawnAgent(testItem("TASK-1"), "stride/task-1")
	if err != nil {
		t.Fatalf("SpawnAgent returned error: %v", err)
	}
	if a.ID == "" {
		t.Error("agent ID should be assigned")
	}
	if a.TaskID != "TASK-1" {
		t.Errorf("TaskID = %q", a.TaskID)
	}
	if a.Branch != "stride/task-1" {
		t.Errorf("Branch = %q", a.Branch)
	}
	if a.Status != models.AgentStatusIdle {
		t.Errorf("Status = %q, want idle", a.Status)
	}
}

func TestSpawnAgentAtCapacityFailsDeterministically(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 1, Factory: okFactory()})

	if _, err := pool.SpawnAgent(testItem("TASK-1"), "b1"); err != nil {
		t.Fatalf("first spawn failed: %v", err)
	}
	_, err := pool.SpawnAgent(testItem("TASK-2"), "b2")
	if err == nil {
		t.Fatal("second spawn should fail at capacity")
	}

	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("error should be a SpawnError, got %T", err)
	}
	if spawnErr.Identifier != "TASK-2" {
		t.Errorf("SpawnError should tag the offending item, got %q", spawnErr.Identifier)
	}
	if !errors.Is(err, ErrPoolAtCapacity) {
		t.Errorf("error should wrap ErrPoolAtCapacity: %v", err)
	}
}

func TestSpawnAgentNoFactory(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 1})
	if _, err := pool.SpawnAgent(testItem("TASK-1"), "b"); err == nil {
		t.Fatal("spawn without a factory should fail")
	}
}

func TestStartAgentSuccess(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 1, Factory: okFactory()})
	a, _ := pool.SpawnAgent(testItem("TASK-1"), "b")

	result, err := pool.StartAgent(context.Background(), a.ID, "prompt")
	if err != nil {
		t.Fatalf("StartAgent returned error: %v", err)
	}
	if !result.Success {
		t.Error("result should be successful")
	}
	if result.Summary != "done" {
		t.Errorf("Summary = %q", result.Summary)
	}
	if result.TaskID != "TASK-1" {
		t.Errorf("TaskID = %q", result.TaskID)
	}

	got, ok := pool.GetAgent(a.ID)
	if !ok {
		t.Fatal("agent should still be leased")
	}
	if got.Status != models.AgentStatusDone {
		t.Errorf("Status = %q, want done", got.Status)
	}
	if got.Progress != 100 {
		t.Errorf("Progress = %d, want 100", got.Progress)
	}
}

func TestStartAgentExecutionFailure(t *testing.T) {
	failing := &stubFactory{runner: &stubRunner{err: errors.New("agent crashed")}}
	pool := NewAgentPool(PoolConfig{MaxAgents: 1, Factory: failing})
	a, _ := pool.SpawnAgent(testItem("TASK-1"), "b")

	result, err := pool.StartAgent(context.Background(), a.ID, "prompt")
	if err != nil {
		t.Fatalf("execution failure must be encoded in the result, not the error: %v", err)
	}
	if result.Success {
		t.Error("result should be a failure")
	}
	var execErr *ExecutionError
	if !errors.As(result.Error, &execErr) {
		t.Fatalf("result error should be an ExecutionError, got %T", result.Error)
	}
	if execErr.TaskID != "TASK-1" {
		t.Errorf("ExecutionError.TaskID = %q", execErr.TaskID)
	}

	got, _ := pool.GetAgent(a.ID)
	if got.Status != models.AgentStatusFailed {
		t.Errorf("Status = %q, want failed", got.Status)
	}
}

func TestStartAgentUnknownID(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 1, Factory: okFactory()})
	_, err := pool.StartAgent(context.Background(), "nope", "prompt")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestRemoveAgentIdempotent(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 1, Factory: okFactory()})
	a, _ := pool.SpawnAgent(testItem("TASK-1"), "b")

	pool.RemoveAgent(a.ID)
	pool.RemoveAgent(a.ID) // second release is a no-op

	if _, ok := pool.GetAgent(a.ID); ok {
		t.Error("agent should be gone after removal")
	}
	if !pool.HasCapacity() {
		t.Error("capacity should be restored after removal")
	}
}

func TestHasCapacity(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 2, Factory: okFactory()})
	if !pool.HasCapacity() {
		t.Fatal("fresh pool should have capacity")
	}
	a1, _ := pool.SpawnAgent(testItem("A"), "b1")
	_, _ = pool.SpawnAgent(testItem("B"), "b2")
	if pool.HasCapacity() {
		t.Error("full pool should not report capacity")
	}
	pool.RemoveAgent(a1.ID)
	if !pool.HasCapacity() {
		t.Error("capacity should return after a release")
	}
}

func TestGetStatusCounts(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 4, Factory: okFactory()})

	a1, _ := pool.SpawnAgent(testItem("A"), "b1")
	_, _ = pool.SpawnAgent(testItem("B"), "b2")

	status := pool.GetStatus()
	if status.MaxAgents != 4 {
		t.Errorf("MaxAgents = %d", status.MaxAgents)
	}
	if status.Active != 2 || status.Idle != 2 || status.Working != 0 {
		t.Errorf("status = %+v, want 2 active idle", status)
	}

	_, _ = pool.StartAgent(context.Background(), a1.ID, "p")
	status = pool.GetStatus()
	if status.Completed != 1 {
		t.Errorf("Completed = %d, want 1", status.Completed)
	}
	if status.Idle != 1 {
		t.Errorf("Idle = %d, want 1", status.Idle)
	}
}

func TestDefaultMaxAgents(t *testing.T) {
	pool := NewAgentPool(PoolConfig{Factory: okFactory()})
	if got := pool.GetStatus().MaxAgents; got != defaultMaxAgents {
		t.Errorf("MaxAgents = %d, want %d", got, defaultMaxAgents)
	}
}

// Concurrent spawn/start/remove from independent goroutines must not
// corrupt the registry.
func TestPoolConcurrentAccess(t *testing.T) {
	pool := NewAgentPool(PoolConfig{MaxAgents: 64, Factory: okFactory()})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			item := testItem("TASK-" + string(rune('A'+n%26)))
			a, err := pool.SpawnAgent(item, "branch")
			if err != nil {
				t.Errorf("spawn failed: %v", err)
				return
			}
			if _, err := pool.StartAgent(context.Background(), a.ID, "p"); err != nil {
				t.Errorf("start failed: %v", err)
			}
			pool.RemoveAgent(a.ID)
		}(i)
	}
	wg.Wait()

	status := pool.GetStatus()
	if status.Active != 0 {
		t.Errorf("all leases should be released, active = %d", status.Active)
	}
	if status.Completed != 32 {
		t.Errorf("Completed = %d, want 32", status.Completed)
	}
}
