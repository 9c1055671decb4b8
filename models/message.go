package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType categorizes inter-agent messages.
type MessageType string

const (
	MessageTypeTask         MessageType = "task"
	MessageTypeResponse     MessageType = "response"
	MessageTypeQuery        MessageType = "query"
	MessageTypeNotification MessageType = "notification"
	MessageTypeError        MessageType = "error"
)

// MessagePriority represents the priority levels of a message or task.
type MessagePriority string

const (
	PriorityLow      MessagePriority = "low"
	PriorityMedium   MessagePriority = "medium"
	PriorityHigh     MessagePriority = "high"
	PriorityCritical MessagePriority = "critical"
)

// Message is one entry in the append-only inter-agent audit log. Messages
// are never mutated after they are stored.
type Message struct {
	MessageID string          `json:"message_id" yaml:"message_id" toml:"message_id"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
	Sender    string          `json:"sender" yaml:"sender" toml:"sender" validate:"required"`
	Recipient string          `json:"recipient" yaml:"recipient" toml:"recipient" validate:"required"`
	Type      MessageType     `json:"message_type" yaml:"message_type" toml:"message_type" validate:"required,oneof=task response query notification error"`
	Priority  MessagePriority `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Content   map[string]any  `json:"content" yaml:"content" toml:"content" validate:"required"`
	ParentID  string          `json:"parent_id,omitempty" yaml:"parent_id,omitempty" toml:"parent_id,omitempty"`
}

// NewMessage creates a message with generated id and timestamp.
func NewMessage(sender, recipient string, mt MessageType, content map[string]any) Message {
	return Message{
		MessageID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Sender:    sender,
		Recipient: recipient,
		Type:      mt,
		Priority:  PriorityMedium,
		Content:   content,
	}
}

// Agent describes a registered worker role. Agent records are written once
// at process start and are read-only afterwards.
type Agent struct {
	AgentID string `json:"agent_id" yaml:"agent_id" toml:"agent_id" validate:"required"`
	Name    string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Type    string `json:"type" yaml:"type" toml:"type" validate:"required"`
}
