package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/josephgoksu/agentwing/internal/llm"
	"github.com/josephgoksu/agentwing/prompts"
)

// ArchitectAgent handles analysis and design steps. It is also the
// registry's fallback role, so it must tolerate steps written for any
// role.
type ArchitectAgent struct {
	BaseAgent
}

// NewArchitectAgent creates the architecture role.
func NewArchitectAgent(chatModel model.BaseChatModel) *ArchitectAgent {
	return &ArchitectAgent{
		BaseAgent: NewBaseAgent("architect", "ArchitectAgent", chatModel),
	}
}

// ExecuteStep carries out one design step against the LLM.
func (a *ArchitectAgent) ExecuteStep(ctx context.Context, payload StepPayload) (map[string]any, error) {
	system, err := RenderPrompt(prompts.ExecuteStepArchitectPrompt, map[string]string{
		"ProjectTitle":       payload.Context.Title,
		"ProjectDescription": payload.Context.Description,
		"StepTitle":          payload.Step.Title,
		"StepDescription":    payload.Step.Description,
	})
	if err != nil {
		return nil, err
	}

	content, err := a.Generate(ctx, system, "Execute this step and report the outcome.", llm.StepTemperature)
	if err != nil {
		return nil, fmt.Errorf("execute step %s: %w", payload.Step.ID, err)
	}

	return map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("Completed step %s", payload.Step.ID),
		"result": map[string]any{
			"analysis": content,
		},
	}, nil
}
