package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskStatus represents the possible statuses of a task.
type TaskStatus string

const (
	TaskStatusPending            TaskStatus = "pending"
	TaskStatusPlanned            TaskStatus = "planned"
	TaskStatusCompleted          TaskStatus = "completed"
	TaskStatusPartiallyCompleted TaskStatus = "partially_completed"
)

// Terminal reports whether the status is final. Terminal tasks are never
// updated again by the execution engine.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusPartiallyCompleted
}

// StepStatus represents the possible statuses of a plan step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// Step is one unit of work within a Plan. Steps are created by the plan
// builder and mutated only by the execution engine.
type Step struct {
	ID          string         `json:"id" yaml:"id" toml:"id" validate:"required"`
	Title       string         `json:"title" yaml:"title" toml:"title"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	AssignedTo  string         `json:"assigned_to" yaml:"assigned_to" toml:"assigned_to"`
	DependsOn   []string       `json:"depends_on,omitempty" yaml:"depends_on,omitempty" toml:"depends_on,omitempty"`
	Status      StepStatus     `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty"`
	Result      map[string]any `json:"result,omitempty" yaml:"result,omitempty" toml:"result,omitempty"`
}

// Plan is an ordered set of steps with dependency edges, owned by exactly
// one Task. Steps keep their declaration order; execution order is decided
// by dependency readiness, not declaration order.
type Plan struct {
	Title string `json:"title" yaml:"title" toml:"title"`
	Steps []Step `json:"steps" yaml:"steps" toml:"steps"`
}

// StepByID returns a pointer into Steps for the given id, or nil.
func (p *Plan) StepByID(id string) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// Task is the persisted record tracking a goal's plan and execution progress.
type Task struct {
	TaskID      string          `json:"task_id" yaml:"task_id" toml:"task_id" validate:"required,uuid4"`
	Title       string          `json:"title" yaml:"title" toml:"title" validate:"required"`
	Description string          `json:"description" yaml:"description" toml:"description" validate:"required"`
	AssignedTo  string          `json:"assigned_to,omitempty" yaml:"assigned_to,omitempty" toml:"assigned_to,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty" yaml:"created_by,omitempty" toml:"created_by,omitempty"`
	Status      TaskStatus      `json:"status" yaml:"status" toml:"status" validate:"required,oneof=pending planned completed partially_completed"`
	Priority    MessagePriority `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
	Plan        *Plan           `json:"plan,omitempty" yaml:"plan,omitempty" toml:"plan,omitempty"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
}

// Goal returns the "title: description" string handed to the plan builder.
func (t *Task) Goal() string {
	return t.Title + ": " + t.Description
}

// NewTask creates a pending task from a submitted goal.
func NewTask(title, description, createdBy string) Task {
	if createdBy == "" {
		createdBy = "user"
	}
	now := time.Now().UTC()
	return Task{
		TaskID:      uuid.NewString(),
		Title:       title,
		Description: description,
		AssignedTo:  "coordinator",
		CreatedBy:   createdBy,
		Status:      TaskStatusPending,
		Priority:    PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}
