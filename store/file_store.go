package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/josephgoksu/agentwing/models"
	yaml "gopkg.in/yaml.v3"
)

const (
	dataDirKey     = "dataDir"
	dataFormatKey  = "dataFormat"
	defaultDataDir = "memory"

	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"

	checksumSuffix = ".checksum"
	lockFileName   = ".agentwing.lock"

	tasksFile    = "tasks"
	messagesFile = "messages"
	agentsFile   = "agents"
	contextFile  = "context"
)

// FileMemoryStore implements MemoryStore with one flat file per collection
// (tasks, messages, agents, context) under a data directory. Every access is
// a whole-file read-then-write guarded by a file lock, with a SHA-256
// checksum sidecar per data file. It supports JSON, YAML, and TOML formats.
type FileMemoryStore struct {
	dir    string
	format string
	flk    *flock.Flock
}

// collection wraps a record slice so every supported encoding, including
// TOML, can represent it at the top level.
type collection[T any] struct {
	Records []T `json:"records" yaml:"records" toml:"records"`
}

// contextMap wraps the shared key/value context map.
type contextMap struct {
	Values map[string]any `json:"values" yaml:"values" toml:"values"`
}

// NewFileMemoryStore creates a new instance of FileMemoryStore.
// It does not initialize the store; Initialize must be called separately.
func NewFileMemoryStore() *FileMemoryStore {
	return &FileMemoryStore{}
}

// Initialize configures the FileMemoryStore. It expects a 'dataDir' key in
// the config map specifying the storage directory, and an optional
// 'dataFormat' key (json, yaml, or toml; default json). The directory is
// created if missing and a file lock is established beside the data files.
func (s *FileMemoryStore) Initialize(config map[string]string) error {
	if val, ok := config[dataDirKey]; ok && val != "" {
		s.dir = val
	} else {
		s.dir = defaultDataDir
	}

	if val, ok := config[dataFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.dir, err)
	}

	s.flk = flock.New(filepath.Join(s.dir, lockFileName))
	return nil
}

// Close releases the store's file lock.
func (s *FileMemoryStore) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}

func (s *FileMemoryStore) withLock(fn func() error) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()
	return fn()
}

func (s *FileMemoryStore) filePath(name string) string {
	return filepath.Join(s.dir, name+"."+s.format)
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data) // Write never returns an error
	return hex.EncodeToString(hasher.Sum(nil))
}

// readDataFile reads and decodes one data file into out. A missing file
// leaves out untouched so callers start from an empty collection.
func (s *FileMemoryStore) readDataFile(name string, out any) error {
	path := s.filePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	checksumPath := path + checksumSuffix
	if expected, err := os.ReadFile(checksumPath); err == nil {
		if strings.TrimSpace(string(expected)) != calculateChecksum(data) {
			return fmt.Errorf("%w: %s", ErrChecksumMismatch, path)
		}
	}

	switch s.format {
	case formatJSON:
		err = json.Unmarshal(data, out)
	case formatYAML:
		err = yaml.Unmarshal(data, out)
	case formatTOML:
		err = toml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s data from %s: %w", s.format, path, err)
	}
	return nil
}

// writeDataFile encodes v and rewrites the whole data file plus its
// checksum sidecar.
func (s *FileMemoryStore) writeDataFile(name string, v any) error {
	var (
		data []byte
		err  error
	)
	switch s.format {
	case formatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(v)
	case formatTOML:
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(v)
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s data: %w", s.format, err)
	}

	path := s.filePath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write data file %s: %w", path, err)
	}
	if err := os.WriteFile(path+checksumSuffix, []byte(calculateChecksum(data)), 0o644); err != nil {
		return fmt.Errorf("failed to write checksum file for %s: %w", path, err)
	}
	return nil
}

// SaveTask upserts a task by id and returns the id.
func (s *FileMemoryStore) SaveTask(task models.Task) (string, error) {
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	err := s.withLock(func() error {
		var col collection[models.Task]
		if err := s.readDataFile(tasksFile, &col); err != nil {
			return err
		}
		replaced := false
		for i := range col.Records {
			if col.Records[i].TaskID == task.TaskID {
				col.Records[i] = task
				replaced = true
				break
			}
		}
		if !replaced {
			col.Records = append(col.Records, task)
		}
		return s.writeDataFile(tasksFile, col)
	})
	if err != nil {
		return "", err
	}
	return task.TaskID, nil
}

// GetTask retrieves a task by id.
func (s *FileMemoryStore) GetTask(id string) (models.Task, error) {
	var found models.Task
	err := s.withLock(func() error {
		var col collection[models.Task]
		if err := s.readDataFile(tasksFile, &col); err != nil {
			return err
		}
		for _, t := range col.Records {
			if t.TaskID == id {
				found = t
				return nil
			}
		}
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	})
	return found, err
}

// ListTasks returns all tasks in storage order.
func (s *FileMemoryStore) ListTasks() ([]models.Task, error) {
	var col collection[models.Task]
	err := s.withLock(func() error {
		return s.readDataFile(tasksFile, &col)
	})
	if err != nil {
		return nil, err
	}
	return col.Records, nil
}

// SaveMessage appends a message and returns its id.
func (s *FileMemoryStore) SaveMessage(msg models.Message) (string, error) {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.Priority == "" {
		msg.Priority = models.PriorityMedium
	}

	err := s.withLock(func() error {
		var col collection[models.Message]
		if err := s.readDataFile(messagesFile, &col); err != nil {
			return err
		}
		col.Records = append(col.Records, msg)
		return s.writeDataFile(messagesFile, col)
	})
	if err != nil {
		return "", err
	}
	return msg.MessageID, nil
}

// ListMessages returns messages matching the filter, oldest first.
func (s *FileMemoryStore) ListMessages(filter MessageFilter) ([]models.Message, error) {
	var col collection[models.Message]
	err := s.withLock(func() error {
		return s.readDataFile(messagesFile, &col)
	})
	if err != nil {
		return nil, err
	}

	var out []models.Message
	for _, m := range col.Records {
		if filter.Sender != "" && m.Sender != filter.Sender {
			continue
		}
		if filter.Recipient != "" && m.Recipient != filter.Recipient {
			continue
		}
		if filter.MessageType != "" && string(m.Type) != filter.MessageType {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// RegisterAgent upserts an agent descriptor by id.
func (s *FileMemoryStore) RegisterAgent(agent models.Agent) (string, error) {
	if agent.AgentID == "" {
		agent.AgentID = uuid.NewString()
	}

	err := s.withLock(func() error {
		var col collection[models.Agent]
		if err := s.readDataFile(agentsFile, &col); err != nil {
			return err
		}
		replaced := false
		for i := range col.Records {
			if col.Records[i].AgentID == agent.AgentID {
				col.Records[i] = agent
				replaced = true
				break
			}
		}
		if !replaced {
			col.Records = append(col.Records, agent)
		}
		return s.writeDataFile(agentsFile, col)
	})
	if err != nil {
		return "", err
	}
	return agent.AgentID, nil
}

// GetAgent retrieves an agent by id.
func (s *FileMemoryStore) GetAgent(id string) (models.Agent, error) {
	var found models.Agent
	err := s.withLock(func() error {
		var col collection[models.Agent]
		if err := s.readDataFile(agentsFile, &col); err != nil {
			return err
		}
		for _, a := range col.Records {
			if a.AgentID == id {
				found = a
				return nil
			}
		}
		return fmt.Errorf("agent %s: %w", id, ErrNotFound)
	})
	return found, err
}

// ListAgents returns all registered agents.
func (s *FileMemoryStore) ListAgents() ([]models.Agent, error) {
	var col collection[models.Agent]
	err := s.withLock(func() error {
		return s.readDataFile(agentsFile, &col)
	})
	if err != nil {
		return nil, err
	}
	return col.Records, nil
}

// ReplaceAgents swaps the whole agent collection.
func (s *FileMemoryStore) ReplaceAgents(agents []models.Agent) error {
	return s.withLock(func() error {
		return s.writeDataFile(agentsFile, collection[models.Agent]{Records: agents})
	})
}

// SetContext stores a value in the shared context map.
func (s *FileMemoryStore) SetContext(key string, value any) error {
	return s.withLock(func() error {
		var ctx contextMap
		if err := s.readDataFile(contextFile, &ctx); err != nil {
			return err
		}
		if ctx.Values == nil {
			ctx.Values = make(map[string]any)
		}
		ctx.Values[key] = value
		return s.writeDataFile(contextFile, ctx)
	})
}

// GetContext retrieves a single context value.
func (s *FileMemoryStore) GetContext(key string) (any, error) {
	var value any
	err := s.withLock(func() error {
		var ctx contextMap
		if err := s.readDataFile(contextFile, &ctx); err != nil {
			return err
		}
		v, ok := ctx.Values[key]
		if !ok {
			return fmt.Errorf("context key %s: %w", key, ErrNotFound)
		}
		value = v
		return nil
	})
	return value, err
}

// Context returns a copy of the whole shared context map.
func (s *FileMemoryStore) Context() (map[string]any, error) {
	out := make(map[string]any)
	err := s.withLock(func() error {
		var ctx contextMap
		if err := s.readDataFile(contextFile, &ctx); err != nil {
			return err
		}
		for k, v := range ctx.Values {
			out[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
