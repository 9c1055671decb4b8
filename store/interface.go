package store

import (
	"errors"

	"github.com/josephgoksu/agentwing/models"
)

// ErrNotFound is returned when a record id does not exist in the store.
// Callers are expected to branch on it with errors.Is rather than parsing
// error strings.
var ErrNotFound = errors.New("record not found")

// ErrChecksumMismatch is returned when a data file fails integrity
// verification against its checksum sidecar.
var ErrChecksumMismatch = errors.New("data file checksum mismatch")

// MessageFilter selects messages by field equality. Zero-valued fields
// match everything.
type MessageFilter struct {
	Sender      string
	Recipient   string
	MessageType string
}

// MemoryStore is the durable record store shared by the coordinator and the
// execution engine. Every write is an upsert keyed by record id; messages
// are append-only. Implementations must provide read-your-writes per id.
// Concurrent writers to the same id race and the last write wins; the store
// makes no stronger promise.
type MemoryStore interface {
	// SaveTask upserts a task by task_id, generating an id when absent,
	// and returns the id.
	SaveTask(task models.Task) (string, error)

	// GetTask retrieves a task by id. Returns ErrNotFound when absent.
	GetTask(id string) (models.Task, error)

	// ListTasks returns all tasks in storage order.
	ListTasks() ([]models.Task, error)

	// SaveMessage appends a message, generating id and timestamp when
	// absent, and returns the id.
	SaveMessage(msg models.Message) (string, error)

	// ListMessages returns messages matching the filter, oldest first.
	ListMessages(filter MessageFilter) ([]models.Message, error)

	// RegisterAgent upserts an agent descriptor by agent_id.
	RegisterAgent(agent models.Agent) (string, error)

	// GetAgent retrieves an agent by id. Returns ErrNotFound when absent.
	GetAgent(id string) (models.Agent, error)

	// ListAgents returns all registered agents.
	ListAgents() ([]models.Agent, error)

	// ReplaceAgents swaps the whole agent collection. Used at process start
	// so stale agent records from earlier runs do not accumulate.
	ReplaceAgents(agents []models.Agent) error

	// SetContext stores a value in the shared context map.
	SetContext(key string, value any) error

	// GetContext retrieves a context value. Returns ErrNotFound when absent.
	GetContext(key string) (any, error)

	// Context returns a copy of the whole shared context map.
	Context() (map[string]any, error)

	// Close releases any resources held by the store, such as file locks.
	Close() error
}
