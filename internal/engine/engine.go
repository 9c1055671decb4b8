/*
Package engine implements the plan execution engine: it walks a plan's
step list to readiness, dispatches ready steps to their assigned roles,
folds results back into the stored task, and aggregates the terminal
status.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/josephgoksu/agentwing/internal/agents"
	"github.com/josephgoksu/agentwing/models"
	"github.com/josephgoksu/agentwing/store"
)

// senderCoordinator is the sender recorded on engine-originated messages.
const senderCoordinator = "coordinator"

// PlanBuilder turns a goal into a plan. It always produces a plan; a
// builder that cannot reach its backend degrades to a template instead of
// failing.
type PlanBuilder interface {
	BuildPlan(ctx context.Context, goal string) models.Plan
}

// Config tunes engine behavior.
type Config struct {
	// MultiPass makes the engine repeat passes until a full pass
	// dispatches nothing, guaranteeing eventual dispatch of satisfiable
	// chains regardless of declaration order. The default single pass
	// preserves the reference behavior: a step whose dependency appears
	// later in the declared order is never dispatched.
	MultiPass bool
}

// Engine drives a task's plan to completion.
type Engine struct {
	store     store.MemoryStore
	registry  *agents.Registry
	planner   PlanBuilder
	multiPass bool
	log       *slog.Logger
}

// New creates an engine bound to a store, a role registry, and a plan
// builder.
func New(st store.MemoryStore, registry *agents.Registry, planner PlanBuilder, cfg Config) *Engine {
	return &Engine{
		store:     st,
		registry:  registry,
		planner:   planner,
		multiPass: cfg.MultiPass,
		log:       slog.Default().With("component", "engine"),
	}
}

// Run drives one task pipeline end to end: build the plan, attach it,
// execute the steps, and write the terminal status. It is the background
// unit of work the coordinator fires per goal; nothing awaits it, so
// failures are logged and the task is left with whatever progress was
// already persisted.
func (e *Engine) Run(ctx context.Context, task models.Task) {
	plan := e.planner.BuildPlan(ctx, task.Goal())
	task.Plan = &plan
	task.Status = models.TaskStatusPlanned

	if _, err := e.store.SaveTask(task); err != nil {
		e.log.Error("failed to attach plan", "task_id", task.TaskID, "error", err)
		return
	}
	e.log.Info("plan attached", "task_id", task.TaskID, "title", plan.Title, "steps", len(plan.Steps))

	status, err := e.ExecutePlan(ctx, &task)
	if err != nil {
		e.log.Error("plan execution aborted", "task_id", task.TaskID, "error", err)
		return
	}
	e.log.Info("task finished", "task_id", task.TaskID, "status", status)
}

// ExecutePlan walks the attached plan and returns the terminal status it
// wrote to the task. The terminal status is computed over the in-memory
// step list used during the pass, not a fresh re-read: completed iff every
// step completed, partially_completed otherwise. There is no failed
// terminal state for the task as a whole.
func (e *Engine) ExecutePlan(ctx context.Context, task *models.Task) (models.TaskStatus, error) {
	if task.Plan == nil {
		return "", fmt.Errorf("task %s has no plan", task.TaskID)
	}

	for {
		dispatched, err := e.executePass(ctx, task)
		if err != nil {
			return "", err
		}
		if !e.multiPass || dispatched == 0 {
			break
		}
	}

	status := models.TaskStatusCompleted
	for _, s := range task.Plan.Steps {
		if s.Status != models.StepStatusCompleted {
			status = models.TaskStatusPartiallyCompleted
			break
		}
	}

	stored, err := e.store.GetTask(task.TaskID)
	if err != nil {
		return "", fmt.Errorf("finalize task %s: %w", task.TaskID, err)
	}
	stored.Status = status
	if _, err := e.store.SaveTask(stored); err != nil {
		return "", fmt.Errorf("finalize task %s: %w", task.TaskID, err)
	}
	return status, nil
}

// executePass visits the step list exactly once in declared order and
// dispatches every ready step. A step is ready iff it is still pending and
// every id in depends_on names a step in this plan whose status is
// completed in the in-memory list, so a chain declared in dependency order
// completes within one pass while a back-referencing step stays pending.
// Returns the number of steps dispatched.
func (e *Engine) executePass(ctx context.Context, task *models.Task) (int, error) {
	steps := task.Plan.Steps
	dispatched := 0

	for i := range steps {
		step := &steps[i]
		if step.Status != models.StepStatusPending && step.Status != "" {
			continue
		}
		if !dependenciesMet(steps, step.DependsOn) {
			continue
		}

		if err := e.dispatchStep(ctx, task, step); err != nil {
			return dispatched, err
		}
		dispatched++

		// Persist partial progress so the step outcome is externally
		// observable while the pass is still running.
		if err := e.persistStep(task.TaskID, *step); err != nil {
			return dispatched, err
		}
	}
	return dispatched, nil
}

// dependenciesMet reports whether every dependency id names a step in the
// same plan that has completed. A dependency that resolves to no step at
// all keeps the step unready forever.
func dependenciesMet(steps []models.Step, dependsOn []string) bool {
	for _, depID := range dependsOn {
		met := false
		for i := range steps {
			if steps[i].ID == depID {
				met = steps[i].Status == models.StepStatusCompleted
				break
			}
		}
		if !met {
			return false
		}
	}
	return true
}

// dispatchStep resolves the step's role, invokes the worker once, and
// records the outcome on the step plus a dispatch/response message pair in
// the audit log. The worker call gets no engine-level timeout or retry;
// both are the worker's own concern.
func (e *Engine) dispatchStep(ctx context.Context, task *models.Task, step *models.Step) error {
	payload := agents.StepPayload{
		Step:   *step,
		TaskID: task.TaskID,
		Context: agents.TaskContext{
			TaskID:      task.TaskID,
			Title:       task.Title,
			Description: task.Description,
		},
	}

	worker := e.registry.Resolve(step.AssignedTo)
	if worker == nil {
		step.Status = models.StepStatusFailed
		step.Result = failurePayload(fmt.Sprintf("no worker registered for role %q", step.AssignedTo))
		return nil
	}

	requestID, err := e.recordDispatch(task, worker.Name(), step)
	if err != nil {
		return err
	}

	e.log.Info("dispatching step", "task_id", task.TaskID, "step_id", step.ID, "role", worker.Name())
	result, execErr := worker.ExecuteStep(ctx, payload)
	if execErr != nil {
		step.Status = models.StepStatusFailed
		step.Result = failurePayload(execErr.Error())
		e.log.Warn("step failed", "task_id", task.TaskID, "step_id", step.ID, "error", execErr)
	} else {
		step.Status = models.StepStatusCompleted
		step.Result = result
	}

	return e.recordResponse(task, worker.Name(), step, requestID)
}

// failurePayload is the result recorded on a failed step.
func failurePayload(message string) map[string]any {
	return map[string]any{
		"status":  "error",
		"message": message,
	}
}

// persistStep folds one step outcome into the stored task: re-read the
// task to merge with concurrent writers, replace the matching step by id,
// and write the task back in full. A task that has vanished from the
// store is skipped, matching the reference behavior.
func (e *Engine) persistStep(taskID string, step models.Step) error {
	stored, err := e.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reload task %s: %w", taskID, err)
	}

	if stored.Plan != nil {
		if target := stored.Plan.StepByID(step.ID); target != nil {
			*target = step
		}
	}

	if _, err := e.store.SaveTask(stored); err != nil {
		return fmt.Errorf("persist step %s of task %s: %w", step.ID, taskID, err)
	}
	return nil
}

// recordDispatch appends the dispatch message for a step and returns its
// id for the response's parent back-reference.
func (e *Engine) recordDispatch(task *models.Task, role string, step *models.Step) (string, error) {
	msg := models.NewMessage(senderCoordinator, role, models.MessageTypeTask, map[string]any{
		"type":       "execute_step",
		"task_id":    task.TaskID,
		"step_id":    step.ID,
		"step_title": step.Title,
	})
	if task.Priority != "" {
		msg.Priority = task.Priority
	}

	id, err := e.store.SaveMessage(msg)
	if err != nil {
		return "", fmt.Errorf("record dispatch message: %w", err)
	}
	return id, nil
}

// recordResponse appends the worker's answer to the audit log.
func (e *Engine) recordResponse(task *models.Task, role string, step *models.Step, parentID string) error {
	mt := models.MessageTypeResponse
	if step.Status == models.StepStatusFailed {
		mt = models.MessageTypeError
	}

	msg := models.NewMessage(role, senderCoordinator, mt, step.Result)
	msg.ParentID = parentID
	if task.Priority != "" {
		msg.Priority = task.Priority
	}

	if _, err := e.store.SaveMessage(msg); err != nil {
		return fmt.Errorf("record response message: %w", err)
	}
	return nil
}
