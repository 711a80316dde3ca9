// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package adapter

import (
	"strings"
	"sync"

	"github.com/diffeo/go-cape/inflect"
)

// Registry maps adapter names to adapters.  It can be safely used
// from multiple goroutines.
type Registry struct {
	inflector   inflect.Inflector
	mu          sync.RWMutex
	adapters    map[string]Adapter
	defaultName string
}

// NewRegistry creates an empty registry.  If in is nil the default
// inflector is used to normalize names.
func NewRegistry(in inflect.Inflector) *Registry {
	if in == nil {
		in = inflect.Default()
	}
	return &Registry{
		inflector: in,
		adapters:  make(map[string]Adapter),
	}
}

// Key returns the key an adapter name is stored under: "foo_bar"
// becomes "FooBarAdapter".  Names already ending in "Adapter" are
// kept as is.
func (r *Registry) Key(name string) string {
	if strings.HasSuffix(name, "Adapter") {
		return name
	}
	return r.inflector.Pascalize(name) + "Adapter"
}

// Register adds an adapter, replacing any existing adapter with the
// same name.
func (r *Registry) Register(name string, a Adapter) {
	key := r.Key(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[key] = a
}

// Unregister removes an adapter.  It does nothing if the name is not
// registered.
func (r *Registry) Unregister(name string) {
	key := r.Key(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, key)
}

// Lookup finds an adapter by name.  An empty name finds no adapter
// and no error; an unregistered name returns ErrUnknownAdapter.
func (r *Registry) Lookup(name string) (Adapter, error) {
	if name == "" {
		return nil, nil
	}
	key := r.Key(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, present := r.adapters[key]
	if !present || a == nil {
		return nil, ErrUnknownAdapter{Name: name}
	}
	return a, nil
}

// SetDefault sets the adapter name used by agents that do not name
// one.  An empty name means no adapter.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultName = name
}

// Default returns the adapter name used by agents that do not name
// one.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// Resolve looks up the adapter name, falling back to the default
// name if name is empty.
func (r *Registry) Resolve(name string) (Adapter, error) {
	if name == "" {
		name = r.Default()
	}
	return r.Lookup(name)
}

var (
	sharedOnce sync.Once
	shared     *Registry
)

// Shared returns the process-wide registry, which starts with the
// built-in "rails" adapter.  Agents use it only when they are not
// given a registry of their own.
func Shared() *Registry {
	sharedOnce.Do(func() {
		shared = NewRegistry(nil)
		RegisterBuiltins(shared)
	})
	return shared
}

// RegisterBuiltins adds the adapters shipped with this package to r.
func RegisterBuiltins(r *Registry) {
	r.Register("rails", Rails)
}
