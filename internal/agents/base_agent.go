package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/josephgoksu/agentwing/models"
)

// BaseAgent provides shared functionality for all LLM-powered agents.
// Embed this struct in your agent to get common methods for free.
type BaseAgent struct {
	role        string
	displayName string
	chatModel   model.BaseChatModel
}

// NewBaseAgent creates a new BaseAgent for the given role.
func NewBaseAgent(role, displayName string, chatModel model.BaseChatModel) BaseAgent {
	return BaseAgent{
		role:        role,
		displayName: displayName,
		chatModel:   chatModel,
	}
}

// Name returns the role key, e.g. "coder".
func (b *BaseAgent) Name() string { return b.role }

// Info returns the agent descriptor. The id is derived from the role name
// so re-registering at boot upserts the same record instead of
// accumulating duplicates.
func (b *BaseAgent) Info() models.Agent {
	return models.Agent{
		AgentID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(b.role)).String(),
		Name:    b.displayName,
		Type:    b.displayName,
	}
}

// Generate sends a system/user prompt pair to the LLM at the given
// temperature and returns the response content.
func (b *BaseAgent) Generate(ctx context.Context, system, user string, temperature float32) (string, error) {
	if b.chatModel == nil {
		return "", fmt.Errorf("agent %s has no chat model configured", b.role)
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}

	resp, err := b.chatModel.Generate(ctx, messages, model.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	return resp.Content, nil
}

// RenderPrompt executes a prompt template constant against data.
func RenderPrompt(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// ParseJSONResponse extracts JSON from an LLM response, handling markdown
// code blocks. If the whole response does not unmarshal, it salvages the
// substring between the first '{' and the last '}' before giving up.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	err := json.Unmarshal([]byte(response), &result)
	if err == nil {
		return result, nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		if err2 := json.Unmarshal([]byte(response[start:end+1]), &result); err2 == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("parse JSON: %w", err)
}

// stripCodeFences removes a surrounding markdown code fence, keeping the
// inner content. Used on step results that embed code.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
