package report

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Definition binds a report name to its filter declaration
type Definition struct {
	Name    string
	Filters func(env Env) []FilterDescriptor
}

var (
	ErrReportExists  = errors.New("report already registered")
	ErrInvalidReport = errors.New("invalid report definition")
)

// Registry holds the query report declarations of the application
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]Definition),
	}
}

// Register adds def. Names are unique.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" || def.Filters == nil {
		return fmt.Errorf("%w: %q", ErrInvalidReport, def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrReportExists, def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	return def, ok
}

// Names lists registered reports alphabetically
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
