package server

import "github.com/josephgoksu/agentwing/models"

// goalRequest is the POST /goals body.
type goalRequest struct {
	Title       string                 `json:"title" validate:"required,min=1"`
	Description string                 `json:"description" validate:"required,min=1"`
	Priority    models.MessagePriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
}

// goalAccepted is the 202 body returned when a goal enters the pipeline.
type goalAccepted struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// messageRequest is the POST /messages body. Recipient must be a
// registered role key; content carries the directive payload.
type messageRequest struct {
	Sender    string                 `json:"sender,omitempty"`
	Recipient string                 `json:"recipient" validate:"required"`
	Type      models.MessageType     `json:"type" validate:"required,oneof=task response query notification error"`
	Priority  models.MessagePriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Content   map[string]any         `json:"content" validate:"required"`
}

// apiError is the JSON error envelope.
type apiError struct {
	Error string `json:"error"`
}
