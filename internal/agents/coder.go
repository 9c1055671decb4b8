package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/josephgoksu/agentwing/internal/llm"
	"github.com/josephgoksu/agentwing/prompts"
)

// CoderAgent handles implementation steps.
type CoderAgent struct {
	BaseAgent
}

// NewCoderAgent creates the coding role.
func NewCoderAgent(chatModel model.BaseChatModel) *CoderAgent {
	return &CoderAgent{
		BaseAgent: NewBaseAgent("coder", "CoderAgent", chatModel),
	}
}

// ExecuteStep carries out one implementation step against the LLM and
// returns the produced artifact.
func (a *CoderAgent) ExecuteStep(ctx context.Context, payload StepPayload) (map[string]any, error) {
	system, err := RenderPrompt(prompts.ExecuteStepCoderPrompt, map[string]string{
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
			"explanation":    fmt.Sprintf("Implemented solution for %s", payload.Step.Title),
			"implementation": stripCodeFences(content),
		},
	}, nil
}
