// Package prompts holds the prompt templates for interacting with Large
// Language Models. Templates are rendered with text/template; the data
// fields each template expects are documented on the constant.
package prompts

// PlanGoalSystemPrompt asks the planning role for a dependency-ordered plan.
// Fields: .Goal (full goal string), .Label (portion before the first colon).
const PlanGoalSystemPrompt = `<instructions>
You are an expert project planner. Create a detailed plan for the following goal.
</instructions>

<goal>
{{.Goal}}
</goal>

<rules>
- The plan must be specifically tailored to this exact goal. Do not produce a generic plan or a plan for a different project.
- Every step must be directly relevant to building {{.Label}}.
- Assign each step to a role such as "architect_agent" or "coder_agent".
- Use "depends_on" to list the ids of steps that must complete first.
- Your entire response MUST be a single, valid JSON object. No text or Markdown outside the JSON.
</rules>

<output_format>
{
  "title": "Plan for: {{.Goal}}",
  "steps": [
    {
      "id": "step_1",
      "title": "string",
      "description": "string",
      "assigned_to": "string",
      "depends_on": ["string"]
    }
  ]
}
</output_format>`

// PlanGoalRetrySystemPrompt is the more directive prompt used after a plan
// whose title did not match the goal. Fields: .Goal, .Label.
const PlanGoalRetrySystemPrompt = `<instructions>
You MUST create a plan SPECIFICALLY for this goal and nothing else.
</instructions>

<goal>
{{.Goal}}
</goal>

<rules>
- CRITICAL: the plan must be about {{.Label}} and nothing else.
- The plan title must explicitly mention {{.Label}}.
- Every step must be directly related to building {{.Label}}.
- Respond with a single JSON object: {"title": string, "steps": [{"id", "title", "description", "assigned_to", "depends_on"}]}.
</rules>`

// PlanGoalUserPrompt is the fixed user turn for both planning prompts.
const PlanGoalUserPrompt = "Please generate the plan."

// ExecuteStepCoderPrompt asks the coding role to carry out one plan step.
// Fields: .ProjectTitle, .ProjectDescription, .StepTitle, .StepDescription.
const ExecuteStepCoderPrompt = `<instructions>
You are an expert software developer working on the project below. Carry out the assigned step.
</instructions>

<project>
Title: {{.ProjectTitle}}
Description: {{.ProjectDescription}}
</project>

<step>
Title: {{.StepTitle}}
Description: {{.StepDescription}}
</step>

<rules>
- Your response MUST be specifically tailored to {{.ProjectTitle}}.
- Provide the implementation, a short explanation, and usage instructions.
</rules>`

// ExecuteStepArchitectPrompt asks the architecture role to carry out one
// plan step. Fields: .ProjectTitle, .ProjectDescription, .StepTitle,
// .StepDescription.
const ExecuteStepArchitectPrompt = `<instructions>
You are an expert software architect working on the project below. Carry out the assigned step.
</instructions>

<project>
Title: {{.ProjectTitle}}
Description: {{.ProjectDescription}}
</project>

<step>
Title: {{.StepTitle}}
Description: {{.StepDescription}}
</step>

<rules>
- Your response MUST be specifically tailored to {{.ProjectTitle}}.
- Cover requirements, component breakdown, and the key design decisions with their trade-offs.
</rules>`

// RefineStepPlannerPrompt asks the planning role to refine a single step
// into finer-grained actions. Fields: .ProjectTitle, .StepTitle,
// .StepDescription.
const RefineStepPlannerPrompt = `<instructions>
You are an expert project planner working on {{.ProjectTitle}}. Break the step below into concrete, ordered actions.
</instructions>

<step>
Title: {{.StepTitle}}
Description: {{.StepDescription}}
</step>`
