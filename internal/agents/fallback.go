package agents

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/agentwing/models"
)

// fallbackPlan builds a deterministic plan when LLM generation fails.
// Weather goals get a specialized multi-step template; everything else
// gets the generic analyze → design → implement → test sequence.
func (a *PlannerAgent) fallbackPlan(goal string) models.Plan {
	label := strings.ToLower(goalLabel(goal))

	if strings.Contains(label, "weather") {
		return weatherFallbackPlan(goal)
	}
	return genericFallbackPlan(goal, label)
}

func weatherFallbackPlan(goal string) models.Plan {
	return models.Plan{
		Title: "Plan for: " + goal,
		Steps: []models.Step{
			{
				ID:          "step_1",
				Title:       "Analyze weather app requirements",
				Description: "Define the requirements for the weather application",
				AssignedTo:  "architect_agent",
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_2",
				Title:       "Design weather app architecture",
				Description: "Create the architecture for the weather application",
				AssignedTo:  "architect_agent",
				DependsOn:   []string{"step_1"},
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_3",
				Title:       "Implement weather API integration",
				Description: "Implement the integration with a weather data API",
				AssignedTo:  "coder_agent",
				DependsOn:   []string{"step_2"},
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_4",
				Title:       "Develop user interface",
				Description: "Create the user interface for the weather app",
				AssignedTo:  "coder_agent",
				DependsOn:   []string{"step_2"},
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_5",
				Title:       "Implement forecast functionality",
				Description: "Add the 5-day forecast feature",
				AssignedTo:  "coder_agent",
				DependsOn:   []string{"step_3", "step_4"},
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_6",
				Title:       "Test the application",
				Description: "Test the weather application for bugs and issues",
				AssignedTo:  "coder_agent",
				DependsOn:   []string{"step_5"},
				Status:      models.StepStatusPending,
			},
		},
	}
}

func genericFallbackPlan(goal, label string) models.Plan {
	return models.Plan{
		Title: "Plan for: " + goal,
		Steps: []models.Step{
			{
				ID:          "step_1",
				Title:       "Analyze requirements",
				Description: fmt.Sprintf("Define the requirements for %s", label),
				AssignedTo:  "architect_agent",
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_2",
				Title:       "Design solution",
				Description: fmt.Sprintf("Create the architecture for %s", label),
				AssignedTo:  "architect_agent",
				DependsOn:   []string{"step_1"},
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_3",
				Title:       "Implement solution",
				Description: fmt.Sprintf("Implement %s", label),
				AssignedTo:  "coder_agent",
				DependsOn:   []string{"step_2"},
				Status:      models.StepStatusPending,
			},
			{
				ID:          "step_4",
				Title:       "Test solution",
				Description: fmt.Sprintf("Test %s", label),
				AssignedTo:  "coder_agent",
				DependsOn:   []string{"step_3"},
				Status:      models.StepStatusPending,
			},
		},
	}
}
