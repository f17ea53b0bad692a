package team

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTeam     = errors.New("team has no agents")
	ErrDuplicateName = errors.New("duplicate agent name")
	ErrAgentNotFound = errors.New("agent not found in team")
)

// Registry holds the ordered set of agents for one session and resolves
// names to handles. Construction validates uniqueness; the registry is
// immutable afterwards.
type Registry struct {
	ordered []Agent
	byName  map[string]Agent
}

// NewRegistry builds a registry from an ordered agent list.
func NewRegistry(agents []Agent) (*Registry, error) {
	if len(agents) == 0 {
		return nil, ErrEmptyTeam
	}
	byName := make(map[string]Agent, len(agents))
	for _, a := range agents {
		name := a.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: agent with empty name", ErrDuplicateName)
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		byName[name] = a
	}
	return &Registry{ordered: agents, byName: byName}, nil
}

// Get resolves an agent by name.
func (r *Registry) Get(name string) (Agent, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Names returns agent names in team order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, a := range r.ordered {
		names[i] = a.Name()
	}
	return names
}

// Contains reports whether name resolves in the team.
func (r *Registry) Contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Descriptors returns the prompt-facing team description in team order.
func (r *Registry) Descriptors() []Descriptor {
	descs := make([]Descriptor, len(r.ordered))
	for i, a := range r.ordered {
		descs[i] = Descriptor{Name: a.Name(), Description: a.Description()}
	}
	return descs
}

// Describe renders the team as a prompt block, one agent per line.
func (r *Registry) Describe() string {
	var sb strings.Builder
	for _, a := range r.ordered {
		fmt.Fprintf(&sb, "%s: %s\n", a.Name(), a.Description())
	}
	return sb.String()
}

// HasUserProxy reports whether the team includes the human-in-the-loop agent.
func (r *Registry) HasUserProxy() bool {
	return r.Contains(UserProxyName)
}
