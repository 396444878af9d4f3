package marker

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps marker names to resolvers and predicate names to
// predicates. It is safe for concurrent use; generation runs only read it.
type Registry struct {
	mu         sync.RWMutex
	resolvers  map[string]Resolver
	predicates map[string]Predicate
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		resolvers:  make(map[string]Resolver),
		predicates: make(map[string]Predicate),
	}
}

// Register registers the resolver for marker name. A name holding "-only-"
// registers an exact token, taking precedence over the base resolver
// combined with the predicate.
func (r *Registry) Register(name string, res Resolver) error {
	if !ValidName(name) {
		return fmt.Errorf("marker: invalid marker name %q", name)
	}
	if res == nil {
		return fmt.Errorf("marker: nil resolver for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resolvers[name]; exists {
		return fmt.Errorf("marker: resolver %q already registered", name)
	}
	r.resolvers[name] = res
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, res Resolver) {
	if err := r.Register(name, res); err != nil {
		panic(err)
	}
}

// RegisterPredicate registers the predicate used by "-only-<name>" markers.
func (r *Registry) RegisterPredicate(name string, p Predicate) error {
	if !ValidName(name) {
		return fmt.Errorf("marker: invalid predicate name %q", name)
	}
	if p == nil {
		return fmt.Errorf("marker: nil predicate for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.predicates[name]; exists {
		return fmt.Errorf("marker: predicate %q already registered", name)
	}
	r.predicates[name] = p
	return nil
}

// MustRegisterPredicate is like RegisterPredicate but panics on error.
func (r *Registry) MustRegisterPredicate(name string, p Predicate) {
	if err := r.RegisterPredicate(name, p); err != nil {
		panic(err)
	}
}

// Lookup returns the resolver for m. An exact registration of the full name
// wins; otherwise a qualified marker resolves to its base resolver filtered
// by the named predicate.
func (r *Registry) Lookup(m Marker) (Resolver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if res, ok := r.resolvers[m.Name]; ok {
		return res, nil
	}
	if m.Only == "" {
		return nil, fmt.Errorf("no resolver registered for %q", m.Name)
	}
	res, ok := r.resolvers[m.Base]
	if !ok {
		return nil, fmt.Errorf("no resolver registered for %q or %q", m.Name, m.Base)
	}
	p, ok := r.predicates[m.Only]
	if !ok {
		return nil, fmt.Errorf("unknown predicate %q", m.Only)
	}
	if f, ok := res.(Filterable); ok {
		return f.Filter(p), nil
	}
	return gated{pred: p, res: res}, nil
}

// Names returns the registered marker names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.resolvers)
}

// PredicateNames returns the registered predicate names, sorted.
func (r *Registry) PredicateNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.predicates)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
