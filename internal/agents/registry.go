package agents

import (
	"strings"

	"github.com/josephgoksu/agentwing/models"
)

// FallbackRole receives steps whose assigned role cannot be resolved.
const FallbackRole = "architect"

// Registry binds role keys to workers. It is constructed once at process
// start and passed by reference into the engine and the coordinator; it is
// not safe for concurrent registration after startup.
type Registry struct {
	byRole   map[string]Agent
	order    []string
	fallback string
}

// NewRegistry creates a registry with the given fallback role.
func NewRegistry(fallbackRole string) *Registry {
	if fallbackRole == "" {
		fallbackRole = FallbackRole
	}
	return &Registry{
		byRole:   make(map[string]Agent),
		fallback: fallbackRole,
	}
}

// Register binds an agent under its role key, replacing any previous
// binding for that role.
func (r *Registry) Register(a Agent) {
	role := a.Name()
	if _, exists := r.byRole[role]; !exists {
		r.order = append(r.order, role)
	}
	r.byRole[role] = a
}

// Get returns the agent bound to an exact role key.
func (r *Registry) Get(role string) (Agent, bool) {
	a, ok := r.byRole[role]
	return a, ok
}

// Resolve maps a step's assigned role to a worker. The role key is the
// assignment truncated at the first underscore ("coder_agent" resolves to
// "coder"); unresolvable roles fall back to the registry's fallback role.
// Resolve returns nil only if the fallback role itself is unregistered.
func (r *Registry) Resolve(assignedTo string) Agent {
	role := assignedTo
	if i := strings.Index(role, "_"); i >= 0 {
		role = role[:i]
	}
	if a, ok := r.byRole[role]; ok {
		return a
	}
	return r.byRole[r.fallback]
}

// Roles returns the registered role keys in registration order.
func (r *Registry) Roles() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Infos returns descriptors for all registered agents in registration order.
func (r *Registry) Infos() []models.Agent {
	out := make([]models.Agent, 0, len(r.order))
	for _, role := range r.order {
		out = append(out, r.byRole[role].Info())
	}
	return out
}
