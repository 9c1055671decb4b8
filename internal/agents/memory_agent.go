package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/josephgoksu/agentwing/store"
)

// MemoryAgent persists step outcomes into the shared context store so
// later steps and external callers can read them back. It does not use
// the LLM.
type MemoryAgent struct {
	BaseAgent
	store store.MemoryStore
}

// NewMemoryAgent creates the memory role backed by the given store.
func NewMemoryAgent(st store.MemoryStore) *MemoryAgent {
	return &MemoryAgent{
		BaseAgent: NewBaseAgent("memory", "MemoryAgent", nil),
		store:     st,
	}
}

// ContextKey returns the shared-context key for a task's step record.
func ContextKey(taskID, stepID string) string {
	return fmt.Sprintf("task:%s:step:%s", taskID, stepID)
}

// ExecuteStep records the step under the shared context map.
func (a *MemoryAgent) ExecuteStep(ctx context.Context, payload StepPayload) (map[string]any, error) {
	key := ContextKey(payload.TaskID, payload.Step.ID)
	value := map[string]any{
		"title":       payload.Step.Title,
		"description": payload.Step.Description,
		"recorded_at": time.Now().UTC().Format(time.RFC3339),
	}

	if err := a.store.SetContext(key, value); err != nil {
		return nil, fmt.Errorf("store step context: %w", err)
	}

	return map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("Stored context for step %s", payload.Step.ID),
		"result": map[string]any{
			"key": key,
		},
	}, nil
}
