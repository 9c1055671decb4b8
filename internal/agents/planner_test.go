package agents

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/josephgoksu/agentwing/models"
)

// fakeChatModel returns canned responses in call order. A nil entry in
// errs means that call succeeds.
type fakeChatModel struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	i := f.calls
	f.calls++

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	content := ""
	if i < len(f.responses) {
		content = f.responses[i]
	}
	return &schema.Message{Role: schema.Assistant, Content: content}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

const weatherPlanJSON = `{
  "title": "Weather app delivery plan",
  "steps": [
    {"id": "step_1", "title": "Analyze requirements", "assigned_to": "architect_agent"},
    {"id": "step_2", "title": "Build the app", "assigned_to": "coder_agent", "depends_on": ["step_1"]}
  ]
}`

func TestBuildPlanAcceptsRelevantTitle(t *testing.T) {
	fake := &fakeChatModel{responses: []string{weatherPlanJSON}}
	planner := NewPlannerAgent(fake)

	plan := planner.BuildPlan(context.Background(), "Create a weather app: with forecasts")

	if fake.calls != 1 {
		t.Errorf("LLM called %d times, want 1", fake.calls)
	}
	if plan.Title != "Weather app delivery plan" {
		t.Errorf("Title = %q", plan.Title)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(plan.Steps))
	}
	// normalizePlan fills omitted statuses.
	for _, s := range plan.Steps {
		if s.Status != models.StepStatusPending {
			t.Errorf("step %s status = %q, want pending", s.ID, s.Status)
		}
	}
}

func TestBuildPlanRetriesIrrelevantTitle(t *testing.T) {
	offTopic := `{"title": "Generic delivery roadmap", "steps": [{"id": "step_1", "title": "Do work", "assigned_to": "coder_agent"}]}`
	fake := &fakeChatModel{responses: []string{offTopic, offTopic}}
	planner := NewPlannerAgent(fake)

	plan := planner.BuildPlan(context.Background(), "Create a weather app: with forecasts")

	if fake.calls != 2 {
		t.Errorf("LLM called %d times, want 2 (initial + retry)", fake.calls)
	}
	// The retry's answer is accepted without a second relevance check.
	if plan.Title != "Generic delivery roadmap" {
		t.Errorf("Title = %q, want retry plan accepted verbatim", plan.Title)
	}
}

func TestBuildPlanFallsBackOnGenerateError(t *testing.T) {
	fake := &fakeChatModel{errs: []error{errors.New("connection refused")}}
	planner := NewPlannerAgent(fake)

	plan := planner.BuildPlan(context.Background(), "Create a weather app: with forecasts")

	if len(plan.Steps) != 6 {
		t.Fatalf("got %d steps, want the 6-step weather template", len(plan.Steps))
	}
	if plan.Title != "Plan for: Create a weather app: with forecasts" {
		t.Errorf("Title = %q", plan.Title)
	}
	last := plan.Steps[5]
	if !reflect.DeepEqual(last.DependsOn, []string{"step_5"}) {
		t.Errorf("final step DependsOn = %v, want [step_5]", last.DependsOn)
	}
}

func TestBuildPlanFallsBackOnUnparsableResponse(t *testing.T) {
	fake := &fakeChatModel{responses: []string{"sorry, I cannot help with that"}}
	planner := NewPlannerAgent(fake)

	plan := planner.BuildPlan(context.Background(), "Organize a conference: 3 days, 200 people")

	// Non-weather goals get the generic 4-step template.
	if len(plan.Steps) != 4 {
		t.Fatalf("got %d steps, want the generic 4-step template", len(plan.Steps))
	}
	if plan.Steps[0].AssignedTo != "architect_agent" {
		t.Errorf("first step AssignedTo = %q", plan.Steps[0].AssignedTo)
	}
	if plan.Steps[2].AssignedTo != "coder_agent" {
		t.Errorf("third step AssignedTo = %q", plan.Steps[2].AssignedTo)
	}
}

func TestBuildPlanRetryErrorFallsBack(t *testing.T) {
	offTopic := `{"title": "Something else entirely", "steps": [{"id": "step_1", "title": "Do work"}]}`
	fake := &fakeChatModel{
		responses: []string{offTopic, ""},
		errs:      []error{nil, errors.New("rate limited")},
	}
	planner := NewPlannerAgent(fake)

	plan := planner.BuildPlan(context.Background(), "Create a weather app: with forecasts")

	if fake.calls != 2 {
		t.Errorf("LLM called %d times, want 2", fake.calls)
	}
	if len(plan.Steps) != 6 {
		t.Errorf("got %d steps, want the weather template after retry failure", len(plan.Steps))
	}
}

func TestGoalLabel(t *testing.T) {
	tests := []struct {
		goal string
		want string
	}{
		{"Create a weather app: with forecasts", "Create a weather app"},
		{"Just a goal without detail", "Just a goal without detail"},
		{"  padded : detail ", "padded"},
	}

	for _, tt := range tests {
		if got := goalLabel(tt.goal); got != tt.want {
			t.Errorf("goalLabel(%q) = %q, want %q", tt.goal, got, tt.want)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		// Stop-words and short tokens drop out.
		{"Create a weather app", []string{"weather"}},
		{"Build an API for the dog", nil},
		{"Organize conference catering", []string{"organize", "conference", "catering"}},
	}

	for _, tt := range tests {
		if got := extractKeywords(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("extractKeywords(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestTitleMatchesKeywords(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		keywords []string
		want     bool
	}{
		{"match", "Weather App Plan", []string{"weather"}, true},
		{"case insensitive", "WEATHER delivery", []string{"weather"}, true},
		{"no match", "Generic roadmap", []string{"weather"}, false},
		{"no keywords matches anything", "Whatever", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleMatchesKeywords(tt.title, tt.keywords); got != tt.want {
				t.Errorf("titleMatchesKeywords(%q, %v) = %v, want %v", tt.title, tt.keywords, got, tt.want)
			}
		})
	}
}

func TestNormalizePlanFillsDefaults(t *testing.T) {
	plan := models.Plan{
		Steps: []models.Step{
			{Title: "first"},
			{ID: "custom", Title: "second", Status: models.StepStatusCompleted},
		},
	}

	normalizePlan(&plan)

	if plan.Steps[0].ID != "step_1" {
		t.Errorf("ID = %q, want step_1", plan.Steps[0].ID)
	}
	if plan.Steps[0].Status != models.StepStatusPending {
		t.Errorf("Status = %q, want pending", plan.Steps[0].Status)
	}
	if plan.Steps[1].ID != "custom" || plan.Steps[1].Status != models.StepStatusCompleted {
		t.Errorf("existing fields must be preserved: %+v", plan.Steps[1])
	}
}
