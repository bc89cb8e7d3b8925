// Package components provides the component-type registry and the
// builtin components that can be placed on a routine's timeline. Each
// builtin registers itself with the global registry in its init
// function, the same way shell commands register in a command registry.
package components

import (
	"fmt"
	"sort"
	"sync"

	"psybuilder/internal/codegen"
)

// Factory builds a fresh component instance with default parameters.
type Factory func(name string) codegen.Component

// TypeInfo describes a registered component type for listings and the
// reference viewer.
type TypeInfo struct {
	Tag         string
	Description string
	Doc         string // markdown reference
}

// Registry manages component-type registration and instantiation.
// It provides thread-safe registration and lookup by type tag.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	infos     map[string]TypeInfo
}

// NewRegistry creates a new component registry with no types registered.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		infos:     make(map[string]TypeInfo),
	}
}

// Register adds a component type to the registry. Returns an error if
// the tag is empty or already registered.
func (r *Registry) Register(info TypeInfo, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info.Tag == "" {
		return fmt.Errorf("component type tag cannot be empty")
	}
	if _, exists := r.factories[info.Tag]; exists {
		return fmt.Errorf("component type %q already registered", info.Tag)
	}

	r.factories[info.Tag] = factory
	r.infos[info.Tag] = info
	return nil
}

// New instantiates a component of the given type with default
// parameters. Returns an error for unknown type tags.
func (r *Registry) New(tag, name string) (codegen.Component, error) {
	r.mu.RLock()
	factory, exists := r.factories[tag]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown component type %q", tag)
	}
	if name == "" {
		return nil, fmt.Errorf("component of type %q needs a name", tag)
	}
	return factory(name), nil
}

// Has reports whether a type tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[tag]
	return exists
}

// Types returns the registered type infos sorted by tag.
func (r *Registry) Types() []TypeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TypeInfo, 0, len(r.infos))
	for _, info := range r.infos {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Tag < infos[j].Tag })
	return infos
}

// Doc returns the markdown reference for a type tag.
func (r *Registry) Doc(tag string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.infos[tag]
	if !exists {
		return "", fmt.Errorf("unknown component type %q", tag)
	}
	return info.Doc, nil
}

// globalRegistry is the registry builtin components register with
// during package initialization.
var globalRegistry = NewRegistry()

// GetGlobalRegistry returns the global component registry instance.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}
