package checks

import (
	"fmt"
	"sort"
)

// Registry holds the ordered set of checks for a run. Built-ins come first
// in their documented order so result ordering is stable across runs;
// externally discovered checks are appended after them sorted by name.
// Registering two checks under one name is a configuration error, raised
// while the registry is being built rather than silently overwriting.
type Registry struct {
	order []Check
	names map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// NewDefaultRegistry returns a registry preloaded with the built-in checks.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, chk := range Builtins() {
		if err := r.Register(chk); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Builtins returns the built-in checks in their fixed execution order:
// freshness, completeness, schema, volume.
func Builtins() []Check {
	return []Check{
		NewFreshnessCheck(),
		NewCompletenessCheck(),
		NewSchemaCheck(),
		NewVolumeCheck(),
	}
}

// Register appends chk to the execution order.
func (r *Registry) Register(chk Check) error {
	name := chk.Name()
	if name == "" {
		return fmt.Errorf("check has no name")
	}
	if r.names[name] {
		return fmt.Errorf("check already registered: %s", name)
	}
	r.names[name] = true
	r.order = append(r.order, chk)
	return nil
}

// RegisterDiscovered appends externally discovered checks, sorted by name
// first: discovery order differs between environments, and sorting restores
// a deterministic execution order.
func (r *Registry) RegisterDiscovered(discovered []Check) error {
	sorted := append([]Check(nil), discovered...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })
	for _, chk := range sorted {
		if err := r.Register(chk); err != nil {
			return err
		}
	}
	return nil
}

// List returns the checks in execution order. The returned slice is a copy;
// the registry itself stays immutable once handed to a runner.
func (r *Registry) List() []Check {
	return append([]Check(nil), r.order...)
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	return len(r.order)
}
