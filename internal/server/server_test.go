package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/josephgoksu/agentwing/internal/agents"
	"github.com/josephgoksu/agentwing/models"
	"github.com/josephgoksu/agentwing/store"
)

type stubAgent struct {
	role string
}

func (s *stubAgent) Name() string { return s.role }

func (s *stubAgent) Info() models.Agent {
	return models.Agent{AgentID: "id-" + s.role, Name: s.role, Type: "stub"}
}

func (s *stubAgent) ExecuteStep(ctx context.Context, payload agents.StepPayload) (map[string]any, error) {
	return map[string]any{"status": "success", "step": payload.Step.ID}, nil
}

type fakeRunner struct {
	ch chan models.Task
}

func (f *fakeRunner) Run(ctx context.Context, task models.Task) {
	f.ch <- task
}

func newTestServer(t *testing.T) (*httptest.Server, store.MemoryStore, *fakeRunner) {
	t.Helper()

	st := store.NewFileMemoryStore()
	if err := st.Initialize(map[string]string{"dataDir": t.TempDir()}); err != nil {
		t.Fatalf("initialize store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	registry := agents.NewRegistry(agents.FallbackRole)
	registry.Register(&stubAgent{role: "coder"})

	runner := &fakeRunner{ch: make(chan models.Task, 1)}
	srv := New(0, st, registry, runner, "test", []string{"http://localhost:5173"})

	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)
	return ts, st, runner
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestInfoEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get /: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	info := decodeBody[map[string]any](t, resp)
	if info["version"] != "test" {
		t.Errorf("version = %v", info["version"])
	}
}

func TestSubmitGoal(t *testing.T) {
	ts, st, runner := newTestServer(t)

	resp := postJSON(t, ts.URL+"/goals", map[string]string{
		"title":       "Build weather app",
		"description": "A weather app with forecasts",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	accepted := decodeBody[goalAccepted](t, resp)
	if accepted.Status != "accepted" || accepted.TaskID == "" {
		t.Fatalf("unexpected response: %+v", accepted)
	}

	// The task is persisted before the response returns.
	task, err := st.GetTask(accepted.TaskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != models.TaskStatusPending {
		t.Errorf("status = %q, want pending", task.Status)
	}

	// The pipeline runs in the background.
	select {
	case ran := <-runner.ch:
		if ran.TaskID != accepted.TaskID {
			t.Errorf("runner got task %q, want %q", ran.TaskID, accepted.TaskID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked")
	}
}

func TestSubmitGoalValidation(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing title", map[string]string{"description": "something"}},
		{"missing description", map[string]string{"title": "something"}},
		{"bad priority", map[string]string{"title": "a", "description": "b", "priority": "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/goals", tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetGoal(t *testing.T) {
	ts, st, _ := newTestServer(t)

	task := models.NewTask("Build weather app", "A weather app", "user")
	if _, err := st.SaveTask(task); err != nil {
		t.Fatalf("save task: %v", err)
	}

	resp, err := http.Get(ts.URL + "/goals/" + task.TaskID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeBody[models.Task](t, resp)
	if got.Title != task.Title {
		t.Errorf("Title = %q, want %q", got.Title, task.Title)
	}

	resp404, err := http.Get(ts.URL + "/goals/3f6f4e8e-0000-4000-8000-000000000000")
	if err != nil {
		t.Fatalf("get missing goal: %v", err)
	}
	defer resp404.Body.Close()
	if resp404.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp404.StatusCode)
	}
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	ts, st, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/messages", map[string]any{
		"recipient": "designer",
		"type":      "task",
		"content":   map[string]any{"type": "execute_step"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	// Nothing is stored for an undeliverable message.
	msgs, err := st.ListMessages(store.MessageFilter{})
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d stored messages, want 0", len(msgs))
	}
}

func TestSendMessageExecuteStep(t *testing.T) {
	ts, st, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/messages", map[string]any{
		"recipient": "coder",
		"type":      "task",
		"content": map[string]any{
			"type":    "execute_step",
			"task_id": "t-1",
			"step": map[string]any{
				"id":    "step_1",
				"title": "Build",
			},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	reply := decodeBody[models.Message](t, resp)
	if reply.Type != models.MessageTypeResponse {
		t.Errorf("reply type = %q, want response", reply.Type)
	}
	if reply.Sender != "coder" {
		t.Errorf("reply sender = %q, want coder", reply.Sender)
	}
	if reply.Content["step"] != "step_1" {
		t.Errorf("reply content = %v", reply.Content)
	}

	// Inbound and reply both recorded, linked by parent id.
	msgs, err := st.ListMessages(store.MessageFilter{})
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d stored messages, want 2", len(msgs))
	}
	if msgs[1].ParentID != msgs[0].MessageID {
		t.Error("reply must reference the inbound message")
	}
}

func TestSendMessageUnsupportedDirective(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/messages", map[string]any{
		"recipient": "coder",
		"type":      "query",
		"content":   map[string]any{"type": "status_report"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	reply := decodeBody[models.Message](t, resp)
	if reply.Type != models.MessageTypeError {
		t.Errorf("reply type = %q, want error", reply.Type)
	}
}

func TestListMessagesQueryFilters(t *testing.T) {
	ts, st, _ := newTestServer(t)

	if _, err := st.SaveMessage(models.NewMessage("coordinator", "coder", models.MessageTypeTask, map[string]any{"n": 1})); err != nil {
		t.Fatalf("save message: %v", err)
	}
	if _, err := st.SaveMessage(models.NewMessage("coder", "coordinator", models.MessageTypeResponse, map[string]any{"n": 2})); err != nil {
		t.Fatalf("save message: %v", err)
	}

	resp, err := http.Get(ts.URL + "/messages?message_type=response")
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}

	respAll, err := http.Get(ts.URL + "/messages")
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	all := decodeBody[map[string]any](t, respAll)
	if all["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", all["count"])
	}
}

func TestAgentsEndpoints(t *testing.T) {
	ts, st, _ := newTestServer(t)

	if err := st.ReplaceAgents([]models.Agent{
		{AgentID: "id-coder", Name: "coder", Type: "CoderAgent"},
	}); err != nil {
		t.Fatalf("replace agents: %v", err)
	}

	resp, err := http.Get(ts.URL + "/agents")
	if err != nil {
		t.Fatalf("get agents: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	list := decodeBody[map[string]any](t, resp)
	if list["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", list["count"])
	}

	respOne, err := http.Get(ts.URL + "/agents/id-coder")
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if respOne.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", respOne.StatusCode)
	}
	agent := decodeBody[models.Agent](t, respOne)
	if agent.Name != "coder" {
		t.Errorf("Name = %q, want coder", agent.Name)
	}

	respMissing, err := http.Get(ts.URL + "/agents/nope")
	if err != nil {
		t.Fatalf("get missing agent: %v", err)
	}
	defer respMissing.Body.Close()
	if respMissing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", respMissing.StatusCode)
	}
}

func TestSelfImprove(t *testing.T) {
	ts, st, runner := newTestServer(t)

	resp := postJSON(t, ts.URL+"/self-improve", map[string]any{})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	accepted := decodeBody[goalAccepted](t, resp)
	task, err := st.GetTask(accepted.TaskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Priority != models.PriorityHigh {
		t.Errorf("priority = %q, want high", task.Priority)
	}
	if task.CreatedBy != "system" {
		t.Errorf("created_by = %q, want system", task.CreatedBy)
	}

	select {
	case <-runner.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked")
	}
}

func TestCORS(t *testing.T) {
	ts, _, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/goals", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}

	reqBad, _ := http.NewRequest(http.MethodOptions, ts.URL+"/goals", nil)
	reqBad.Header.Set("Origin", "http://evil.example")
	respBad, err := http.DefaultClient.Do(reqBad)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer respBad.Body.Close()
	if respBad.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", respBad.StatusCode)
	}
}
