package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stride-cli/stride/internal/agent"
	"github.com/stride-cli/stride/pkg/models"
)

// defaultMaxAgents bounds concurrency when no limit is configured.
const defaultMaxAgents = 3

// PoolConfig contains configuration options for the AgentPool.
type PoolConfig struct {
	// MaxAgents is the maximum number of concurrently leased agents.
	// If 0, defaultMaxAgents is used.
	MaxAgents int
	// Factory creates the opaque agent runner for each lease.
	// Required - must be set before calling SpawnAgent.
	Factory agent.Factory
	// RunTimeout bounds each agent run. Zero means no timeout.
	RunTimeout time.Duration
}

// PoolStatus is an aggregate snapshot of the pool.
type PoolStatus struct {
	// MaxAgents is the configured concurrency limit.
	MaxAgents int
	// Active is the number of currently leased agents.
	Active int
	// Idle is the number of leased agents not yet started.
	Idle int
	// Working is the number of agents currently executing.
	Working int
	// Completed is the cumulative count of successful runs.
	Completed int
	// Failed is the cumulative count of failed runs.
	Failed int
}

// poolAgent pairs an agent lease with its runner. Owned by the pool;
// never handed out directly.
type poolAgent struct {
	model  models.Agent
	runner agent.Runner
}

// AgentPool is a bounded pool of agent leases. The registry is an
// id-keyed map guarded by a mutex so concurrent item pipelines cannot
// corrupt each other's entries.
type AgentPool struct {
	cfg PoolConfig

	mu        sync.RWMutex
	agents    map[string]*poolAgent
	completed int
	failed    int
}

// NewAgentPool creates a new AgentPool.
func NewAgentPool(cfg PoolConfig) *AgentPool {
	if cfg.MaxAgents <= 0 {
		cfg.MaxAgents = defaultMaxAgents
	}
	return &AgentPool{
		cfg:    cfg,
		agents: make(map[string]*poolAgent),
	}
}

// SpawnAgent leases a new agent bound to the given item and branch.
// It fails deterministically with a SpawnError when the pool is at
// capacity or the runner cannot be created; it never queues. Callers
// wanting queuing must schedule capacity-aware themselves.
func (p *AgentPool) SpawnAgent(item *models.ExecutionItem, branch string) (*models.Agent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.agents) >= p.cfg.MaxAgents {
		return nil, &SpawnError{Identifier: item.Identifier, Err: ErrPoolAtCapacity}
	}
	if p.cfg.Factory == nil {
		return nil, &SpawnError{Identifier: item.Identifier, Err: fmt.Errorf("no runner factory configured")}
	}

	runner := p.cfg.Factory.NewRunner()
	if runner == nil {
		return nil, &SpawnError{Identifier: item.Identifier, Err: fmt.Errorf("runner factory returned nil")}
	}

	model := models.Agent{
		ID:        uuid.New().String(),
		TaskID:    item.Identifier,
		Branch:    branch,
		Status:    models.AgentStatusIdle,
		StartedAt: time.Now(),
	}
	p.agents[model.ID] = &poolAgent{model: model, runner: runner}

	copied := model
	return &copied, nil
}

// StartAgent runs the agent's task to completion and returns the
// outcome. The returned error is non-nil only for an unknown agent id;
// execution failure is encoded in the AgentResult.
func (p *AgentPool) StartAgent(ctx context.Context, agentID, prompt string) (*AgentResult, error) {
	p.mu.Lock()
	pa, ok := p.agents[agentID]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	pa.model.Status = models.AgentStatusWorking
	runner := pa.runner
	taskID := pa.model.TaskID
	p.mu.Unlock()

	if p.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RunTimeout)
		defer cancel()
	}

	started := time.Now()
	outcome, err := runner.Run(ctx, prompt)
	duration := time.Since(started)

	result := &AgentResult{
		AgentID:  agentID,
		TaskID:   taskID,
		Duration: duration,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// The lease may have been removed while the agent ran; update the
	// registry entry only if it is still present.
	pa, stillThere := p.agents[agentID]

	if err != nil {
		result.Error = &ExecutionError{AgentID: agentID, TaskID: taskID, Err: err}
		p.failed++
		if stillThere {
			pa.model.Status = models.AgentStatusFailed
		}
		return result, nil
	}

	result.Success = true
	result.Summary = outcome.Summary
	p.completed++
	if stillThere {
		pa.model.Status = models.AgentStatusDone
		pa.model.Progress = 100
	}
	return result, nil
}

// GetAgent returns a snapshot of the leased agent, if present.
func (p *AgentPool) GetAgent(agentID string) (*models.Agent, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pa, ok := p.agents[agentID]
	if !ok {
		return nil, false
	}
	copied := pa.model
	return &copied, true
}

// RemoveAgent releases the lease. Removing an unknown id is a no-op,
// making release idempotent.
func (p *AgentPool) RemoveAgent(agentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.agents, agentID)
}

// HasCapacity returns true if a SpawnAgent call would not be rejected
// for capacity.
func (p *AgentPool) HasCapacity() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.agents) < p.cfg.MaxAgents
}

// GetStatus returns an aggregate snapshot of the pool.
func (p *AgentPool) GetStatus() PoolStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := PoolStatus{
		MaxAgents: p.cfg.MaxAgents,
		Active:    len(p.agents),
		Completed: p.completed,
		Failed:    p.failed,
	}
	for _, pa := range p.agents {
		switch pa.model.Status {
		case models.AgentStatusIdle:
			status.Idle++
		case models.AgentStatusWorking:
			status.Working++
		}
	}
	return status
}
