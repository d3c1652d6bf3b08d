package unit

import (
	"errors"
	"sync"
)

var (
	ErrCommandAlreadyRegistered  = errors.New("command already registered")
	ErrQueryAlreadyRegistered    = errors.New("query already registered")
	ErrResourceAlreadyRegistered = errors.New("resource already registered")
	ErrCommandNotFound           = errors.New("command not found")
	ErrQueryNotFound             = errors.New("query not found")
	ErrResourceNotFound          = errors.New("resource not found")
)

// Registry is the central, thread-safe registry of all atomic units.
type Registry struct {
	commands  map[string]Command
	queries   map[string]Query
	resources map[string]Resource
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		queries:   make(map[string]Query),
		resources: make(map[string]Resource),
	}
}

func (r *Registry) RegisterCommand(cmd Command) error {
	if cmd == nil {
		return ErrCommandNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := cmd.Name()
	if _, exists := r.commands[name]; exists {
		return ErrCommandAlreadyRegistered
	}

	r.commands[name] = cmd
	return nil
}

func (r *Registry) RegisterQuery(q Query) error {
	if q == nil {
		return ErrQueryNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := q.Name()
	if _, exists := r.queries[name]; exists {
		return ErrQueryAlreadyRegistered
	}

	r.queries[name] = q
	return nil
}

func (r *Registry) RegisterResource(res Resource) error {
	if res == nil {
		return ErrResourceNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	uri := res.URI()
	if _, exists := r.resources[uri]; exists {
		return ErrResourceAlreadyRegistered
	}

	r.resources[uri] = res
	return nil
}

// GetCommand retrieves a Command by name. Returns nil if not found.
func (r *Registry) GetCommand(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.commands[name]
}

// GetQuery retrieves a Query by name. Returns nil if not found.
func (r *Registry) GetQuery(name string) Query {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.queries[name]
}

// GetResource retrieves a Resource by URI. Returns nil if not found.
func (r *Registry) GetResource(uri string) Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.resources[uri]
}

func (r *Registry) ListCommands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	return result
}

func (r *Registry) ListQueries() []Query {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Query, 0, len(r.queries))
	for _, q := range r.queries {
		result = append(result, q)
	}
	return result
}

func (r *Registry) ListResources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Resource, 0, len(r.resources))
	for _, res := range r.resources {
		result = append(result, res)
	}
	return result
}

// Get retrieves a unit by name or URI, searching commands, queries, then
// resources. Returns nil if not found.
func (r *Registry) Get(name string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if q, ok := r.queries[name]; ok {
		return q
	}
	if res, ok := r.resources[name]; ok {
		return res
	}
	return nil
}

func (r *Registry) CommandCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.commands)
}

func (r *Registry) QueryCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.queries)
}

func (r *Registry) ResourceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.resources)
}
