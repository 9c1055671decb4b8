package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/josephgoksu/agentwing/internal/agents"
	"github.com/josephgoksu/agentwing/models"
	"github.com/josephgoksu/agentwing/store"
)

// handleInfo describes the running coordinator.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, map[string]any{
		"name":      "AgentWing Coordinator",
		"version":   s.version,
		"status":    "running",
		"agents":    s.registry.Roles(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSubmitGoal accepts a goal, persists the pending task, and hands it
// to the background pipeline. The response returns before planning starts.
func (s *Server) handleSubmitGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateStruct(req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := models.NewTask(req.Title, req.Description, "user")
	if req.Priority != "" {
		task.Priority = req.Priority
	}

	if _, err := s.store.SaveTask(task); err != nil {
		writeAPIError(w, http.StatusInternalServerError, fmt.Sprintf("store task: %v", err))
		return
	}

	go s.runner.Run(context.Background(), task)

	writeAPIJSON(w, http.StatusAccepted, goalAccepted{
		Status:  "accepted",
		Message: fmt.Sprintf("Goal %q accepted for planning", req.Title),
		TaskID:  task.TaskID,
	})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := s.store.GetTask(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, fmt.Sprintf("task %s not found", id))
			return
		}
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, http.StatusOK, task)
}

// handleSendMessage delivers a message directly to a registered agent.
// The recipient must match a role key exactly; no fallback applies here,
// and nothing is stored for an unknown recipient. An execute_step
// directive invokes the agent synchronously; any other content earns an
// error-type reply. Both the inbound message and the reply land in the
// audit log, and the reply is returned to the caller.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateStruct(req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	agent, ok := s.registry.Get(req.Recipient)
	if !ok {
		writeAPIError(w, http.StatusNotFound, fmt.Sprintf("unknown recipient %q", req.Recipient))
		return
	}

	sender := req.Sender
	if sender == "" {
		sender = "user"
	}

	inbound := models.NewMessage(sender, req.Recipient, req.Type, req.Content)
	if req.Priority != "" {
		inbound.Priority = req.Priority
	}
	if _, err := s.store.SaveMessage(inbound); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reply := s.deliver(r.Context(), agent, inbound)
	if _, err := s.store.SaveMessage(reply); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, http.StatusOK, reply)
}

// deliver executes the message's directive against the agent and builds
// the reply message.
func (s *Server) deliver(ctx context.Context, agent agents.Agent, inbound models.Message) models.Message {
	directive, _ := inbound.Content["type"].(string)
	if directive != "execute_step" {
		reply := models.NewMessage(inbound.Recipient, inbound.Sender, models.MessageTypeError, map[string]any{
			"status":  "error",
			"message": fmt.Sprintf("unsupported directive %q", directive),
		})
		reply.ParentID = inbound.MessageID
		return reply
	}

	payload, err := stepPayloadFromContent(inbound.Content)
	if err != nil {
		reply := models.NewMessage(inbound.Recipient, inbound.Sender, models.MessageTypeError, map[string]any{
			"status":  "error",
			"message": err.Error(),
		})
		reply.ParentID = inbound.MessageID
		return reply
	}

	result, err := agent.ExecuteStep(ctx, payload)
	if err != nil {
		reply := models.NewMessage(inbound.Recipient, inbound.Sender, models.MessageTypeError, map[string]any{
			"status":  "error",
			"message": err.Error(),
		})
		reply.ParentID = inbound.MessageID
		return reply
	}

	reply := models.NewMessage(inbound.Recipient, inbound.Sender, models.MessageTypeResponse, result)
	reply.ParentID = inbound.MessageID
	return reply
}

// stepPayloadFromContent decodes the execute_step directive. The step is
// carried as a nested object under the "step" key.
func stepPayloadFromContent(content map[string]any) (agents.StepPayload, error) {
	raw, ok := content["step"]
	if !ok {
		return agents.StepPayload{}, fmt.Errorf("execute_step directive missing step")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return agents.StepPayload{}, fmt.Errorf("encode step: %w", err)
	}
	var step models.Step
	if err := json.Unmarshal(data, &step); err != nil {
		return agents.StepPayload{}, fmt.Errorf("decode step: %w", err)
	}

	taskID, _ := content["task_id"].(string)
	title, _ := content["project_title"].(string)
	description, _ := content["project_description"].(string)

	return agents.StepPayload{
		Step:   step,
		TaskID: taskID,
		Context: agents.TaskContext{
			TaskID:      taskID,
			Title:       title,
			Description: description,
		},
	}, nil
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	filter := store.MessageFilter{
		Sender:      r.URL.Query().Get("sender"),
		Recipient:   r.URL.Query().Get("recipient"),
		MessageType: r.URL.Query().Get("message_type"),
	}

	messages, err := s.store.ListMessages(filter)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListAgents()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]any{
		"agents": list,
		"count":  len(list),
	})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	agent, err := s.store.GetAgent(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, fmt.Sprintf("agent %s not found", id))
			return
		}
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, http.StatusOK, agent)
}

// handleSelfImprove seeds a high-priority improvement goal against the
// system itself and runs it through the normal pipeline.
func (s *Server) handleSelfImprove(w http.ResponseWriter, r *http.Request) {
	task := models.NewTask(
		"Improve AgentWing System",
		"Analyze the coordinator, the planning flow, and the execution engine, then propose and apply improvements",
		"system",
	)
	task.Priority = models.PriorityHigh

	if _, err := s.store.SaveTask(task); err != nil {
		writeAPIError(w, http.StatusInternalServerError, fmt.Sprintf("store task: %v", err))
		return
	}

	go s.runner.Run(context.Background(), task)

	writeAPIJSON(w, http.StatusAccepted, goalAccepted{
		Status:  "accepted",
		Message: "Self-improvement cycle started",
		TaskID:  task.TaskID,
	})
}

func writeAPIJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeAPIJSON(w, status, apiError{Error: message})
}
