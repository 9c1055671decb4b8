package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/josephgoksu/agentwing/internal/llm"
	"github.com/josephgoksu/agentwing/models"
	"github.com/josephgoksu/agentwing/prompts"
)

// PlannerAgent turns a goal into a dependency-ordered plan. BuildPlan has
// no failure mode visible to callers: an unusable LLM answer degrades to
// one directive retry and finally to a built-in template.
type PlannerAgent struct {
	BaseAgent
}

// NewPlannerAgent creates the planning role.
func NewPlannerAgent(chatModel model.BaseChatModel) *PlannerAgent {
	return &PlannerAgent{
		BaseAgent: NewBaseAgent("planner", "PlannerAgent", chatModel),
	}
}

// promptData feeds the planning prompt templates.
type promptData struct {
	Goal  string
	Label string
}

// BuildPlan requests a plan from the LLM at low temperature, checks the
// returned title against the goal's keywords, retries once with a more
// directive prompt when the title does not match, and falls back to a
// deterministic template when generation fails either time.
func (a *PlannerAgent) BuildPlan(ctx context.Context, goal string) models.Plan {
	data := promptData{Goal: goal, Label: goalLabel(goal)}

	system, err := RenderPrompt(prompts.PlanGoalSystemPrompt, data)
	if err != nil {
		return a.fallbackPlan(goal)
	}

	content, err := a.Generate(ctx, system, prompts.PlanGoalUserPrompt, llm.PlanningTemperature)
	if err != nil {
		slog.Warn("plan generation failed, using fallback template", "goal", data.Label, "error", err)
		return a.fallbackPlan(goal)
	}

	plan, err := ParseJSONResponse[models.Plan](content)
	if err != nil {
		slog.Warn("plan response unparsable, using fallback template", "goal", data.Label, "error", err)
		return a.fallbackPlan(goal)
	}
	normalizePlan(&plan)

	if titleMatchesKeywords(plan.Title, extractKeywords(data.Label)) {
		return plan
	}

	slog.Info("plan title did not match goal, retrying with directive prompt", "goal", data.Label, "title", plan.Title)
	return a.retryBuildPlan(ctx, goal, data)
}

// retryBuildPlan makes the single, colder retry. The retry's answer is
// accepted without a second relevance check; only generation or parse
// failure drops through to the fallback template.
func (a *PlannerAgent) retryBuildPlan(ctx context.Context, goal string, data promptData) models.Plan {
	system, err := RenderPrompt(prompts.PlanGoalRetrySystemPrompt, data)
	if err != nil {
		return a.fallbackPlan(goal)
	}

	content, err := a.Generate(ctx, system, prompts.PlanGoalUserPrompt, llm.PlanningRetryTemperature)
	if err != nil {
		return a.fallbackPlan(goal)
	}

	plan, err := ParseJSONResponse[models.Plan](content)
	if err != nil {
		return a.fallbackPlan(goal)
	}
	normalizePlan(&plan)
	return plan
}

// ExecuteStep lets the planning role act as a worker too: it refines the
// step into ordered actions rather than producing an artifact.
func (a *PlannerAgent) ExecuteStep(ctx context.Context, payload StepPayload) (map[string]any, error) {
	system, err := RenderPrompt(prompts.RefineStepPlannerPrompt, map[string]string{
		"ProjectTitle":    payload.Context.Title,
		"StepTitle":       payload.Step.Title,
		"StepDescription": payload.Step.Description,
	})
	if err != nil {
		return nil, err
	}

	content, err := a.Generate(ctx, system, "Please refine this step.", llm.StepTemperature)
	if err != nil {
		return nil, fmt.Errorf("execute step %s: %w", payload.Step.ID, err)
	}

	return map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("Refined step %s", payload.Step.ID),
		"result": map[string]any{
			"notes": content,
		},
	}, nil
}

// normalizePlan fills in the fields the LLM is allowed to omit: missing
// step ids become positional, missing statuses become pending.
func normalizePlan(p *models.Plan) {
	for i := range p.Steps {
		if p.Steps[i].ID == "" {
			p.Steps[i].ID = fmt.Sprintf("step_%d", i+1)
		}
		if p.Steps[i].Status == "" {
			p.Steps[i].Status = models.StepStatusPending
		}
	}
}

// goalLabel returns the portion of a "label: detail" goal before the first
// colon, or the whole goal when there is none.
func goalLabel(goal string) string {
	if label, _, ok := strings.Cut(goal, ":"); ok {
		return strings.TrimSpace(label)
	}
	return strings.TrimSpace(goal)
}

// stopWords are dropped during keyword extraction.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"for": {}, "with": {}, "about": {},
	"create": {}, "build": {}, "develop": {}, "implement": {},
}

// extractKeywords tokenizes text into relevance keywords: lowercase,
// stop-words removed, tokens shorter than four characters discarded.
func extractKeywords(text string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if len(word) <= 3 {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// titleMatchesKeywords reports whether at least one keyword appears in the
// title, case-insensitively. A goal with no usable keywords matches any
// title.
func titleMatchesKeywords(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	title = strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
