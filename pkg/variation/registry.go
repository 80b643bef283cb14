package variation

import "fmt"

// Registry holds the process-wide set of generator modules, keyed by stable
// name. It is populated once at startup from an explicit registration table
// and read-only afterwards, so Resolve is safe for concurrent use without
// locking.
type Registry struct {
	names   []string
	modules map[string]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module under its declared name. A duplicate name is
// rejected with ErrDuplicateModule and the first registration is kept, so
// the conflict is surfaced to the operator instead of silently resolved.
func (r *Registry) Register(m Module) error {
	name := m.Name()
	if _, taken := r.modules[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateModule, name)
	}
	r.modules[name] = m
	r.names = append(r.names, name)
	return nil
}

// Resolve returns the module registered under name,
// or ErrUnknownModule when there is none.
func (r *Registry) Resolve(name string) (Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	return m, nil
}

// Descriptors lists every registered module in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		m := r.modules[name]
		out = append(out, Descriptor{
			Name:       m.Name(),
			Label:      m.Label(),
			Ready:      m.Ready() == nil,
			Parameters: m.Parameters(),
		})
	}
	return out
}

// Len reports how many modules are registered.
func (r *Registry) Len() int {
	return len(r.names)
}
