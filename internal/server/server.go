/*
Package server exposes the coordinator's HTTP API: goal intake, task and
message inspection, agent discovery, and direct message dispatch.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/josephgoksu/agentwing/internal/agents"
	"github.com/josephgoksu/agentwing/models"
	"github.com/josephgoksu/agentwing/store"
)

// TaskRunner is the background pipeline a accepted goal is handed to.
type TaskRunner interface {
	Run(ctx context.Context, task models.Task)
}

type Server struct {
	store    store.MemoryStore
	registry *agents.Registry
	runner   TaskRunner
	version  string
	origins  map[string]struct{}
	server   *http.Server
}

// New wires the coordinator API on the given port. allowedOrigins lists
// the browser origins CORS will admit; an empty list disables CORS.
func New(port int, st store.MemoryStore, registry *agents.Registry, runner TaskRunner, version string, allowedOrigins []string) *Server {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	s := &Server{
		store:    st,
		registry: registry,
		runner:   runner,
		version:  version,
		origins:  origins,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.corsMiddleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("POST /goals", s.handleSubmitGoal)
	mux.HandleFunc("GET /goals", s.handleListGoals)
	mux.HandleFunc("GET /goals/{id}", s.handleGetGoal)
	mux.HandleFunc("POST /messages", s.handleSendMessage)
	mux.HandleFunc("GET /messages", s.handleListMessages)
	mux.HandleFunc("GET /agents", s.handleListAgents)
	mux.HandleFunc("GET /agents/{id}", s.handleGetAgent)
	mux.HandleFunc("POST /self-improve", s.handleSelfImprove)
	return mux
}

// Start launches the listener on its own goroutine. Fatal listener errors
// are reported through errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
