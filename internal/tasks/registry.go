package tasks

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownBackend is returned when a reminder backend name is not registered
var ErrUnknownBackend = errors.New("unknown task backend")

// Registry maps backend names to factories. Backends add themselves from
// init so `hangs remind --backend` can pick one by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]BackendFactory{}}
}

// Register fails if name is taken
func (r *Registry) Register(name string, factory BackendFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.factories[name]; taken {
		return fmt.Errorf("task backend %q registered twice", name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds a fresh backend
func (r *Registry) Create(name string) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownBackend, name, strings.Join(r.List(), ", "))
	}
	return factory(), nil
}

// List returns registered names in alphabetical order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a backend to the process-wide registry
func Register(name string, factory BackendFactory) error {
	return defaultRegistry.Register(name, factory)
}

func CreateBackend(name string) (Backend, error) {
	return defaultRegistry.Create(name)
}

func ListBackends() []string {
	return defaultRegistry.List()
}
