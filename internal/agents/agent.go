/*
Package agents provides the worker roles the execution engine dispatches
plan steps to:
- PlannerAgent: turns a goal into a dependency-ordered plan
- ArchitectAgent: handles analysis and design steps
- CoderAgent: handles implementation steps
- MemoryAgent: persists step outcomes into the shared context store

Each agent implements the Agent interface. Roles are bound once at process
start through a Registry that is passed by reference into the engine and
the coordinator; there is no ambient global lookup.
*/
package agents

import (
	"context"

	"github.com/josephgoksu/agentwing/models"
)

// TaskContext is the shallow snapshot of the owning task's identifying
// fields handed to a worker. It deliberately excludes the plan so the
// payload does not grow with every step that references it.
type TaskContext struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StepPayload is the unit of work a role receives for one plan step.
type StepPayload struct {
	Step    models.Step `json:"step"`
	TaskID  string      `json:"task_id"`
	Context TaskContext `json:"context"`
}

// Agent is a worker role. ExecuteStep carries out one plan step and
// returns an opaque result payload; any error is recorded by the engine as
// step failure. Workers own their internal retry policy; the engine never
// retries a step.
type Agent interface {
	// Name returns the role key, e.g. "coder".
	Name() string

	// Info returns the agent descriptor registered in the store.
	Info() models.Agent

	// ExecuteStep carries out one plan step.
	ExecuteStep(ctx context.Context, payload StepPayload) (map[string]any, error)
}
