package bot

import (
	"fmt"
	"sync"
)

// Registry keeps modules in registration order.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
	names   map[string]struct{}
}

// NewRegistry creates a new module registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Register adds a module. It panics if a module with the same name is already
// registered, since two modules would fight over the same commands.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, dup := r.names[name]; dup {
		panic(fmt.Sprintf("bot: Register called twice for module %q", name))
	}
	r.names[name] = struct{}{}
	r.modules = append(r.modules, m)
}

// Modules returns a copy of the registered modules.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Module(nil), r.modules...)
}

var globalRegistry = NewRegistry()

// Register adds a module to the global registry.
// Modules call it from init() so that a blank import in main enables them.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns all modules from the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry empties the global registry. Tests only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
