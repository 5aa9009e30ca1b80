package script

import (
	"fmt"
	"sync"

	"github.com/Kreyren/Krura/pkg/config"
)

// Factory creates a script instance from its profile section. The
// section may be nil when a script is constructed purely from its
// definition defaults.
type Factory func(section *config.Section) (Script, error)

// Registry maps script names to factories and instantiates the scripts
// a profile enables. A profile section enables the script of the same
// name; sections without a registered factory are left for the caller
// to report as unused.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty script registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under the given script name. Registering the
// same name twice replaces the earlier factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; !ok {
		r.order = append(r.order, name)
	}
	r.factories[name] = factory
}

// HasFactory checks if a factory is registered for the script name.
func (r *Registry) HasFactory(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// RegisteredNames returns the registered script names in registration
// order.
func (r *Registry) RegisteredNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// LoadScripts instantiates every registered script that has a section
// in the profile, in profile order. A section naming no registered
// script is skipped; the caller can surface those via
// cfg.GetUnusedSections.
func (r *Registry) LoadScripts(cfg *config.Config) ([]Script, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var scripts []Script
	for _, name := range cfg.GetSectionNames() {
		factory, ok := r.factories[name]
		if !ok {
			continue
		}
		sec, err := cfg.GetSection(name)
		if err != nil {
			return nil, err
		}
		s, err := factory(sec)
		if err != nil {
			return nil, fmt.Errorf("script: failed to load [%s]: %w", name, err)
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
