package multiply

import (
	"sort"
	"sync"

	dberror "twotable/pkg/error"
)

// Names of the built-in strategies.
const (
	CartesianName = "cartesian"
	MathName      = "math"
)

// RowFactory creates a fresh, uninitialized row strategy.
type RowFactory func() RowMultiplier

// ElementFactory creates a fresh, uninitialized element strategy.
type ElementFactory func() ElementMultiplier

// Registry maps strategy names to factories. Every aligner, and every fork of
// one, asks the registry for new instances so no strategy state is shared.
type Registry struct {
	mu       sync.RWMutex
	rows     map[string]RowFactory
	elements map[string]ElementFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rows:     make(map[string]RowFactory),
		elements: make(map[string]ElementFactory),
	}
}

// DefaultRegistry returns a registry holding the built-in strategies:
// "cartesian" for rows and "math" for elements.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.rows[CartesianName] = func() RowMultiplier { return NewCartesianRowMultiply(r) }
	r.elements[MathName] = func() ElementMultiplier { return NewMathTwoScalar() }
	return r
}

// RegisterRow adds a row strategy. Names must be unique.
func (r *Registry) RegisterRow(name string, f RowFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[name]; exists {
		return dberror.Configuration("row strategy already registered").WithDetail("name %q", name)
	}
	r.rows[name] = f
	return nil
}

// RegisterElement adds an element strategy. Names must be unique.
func (r *Registry) RegisterElement(name string, f ElementFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.elements[name]; exists {
		return dberror.Configuration("element strategy already registered").WithDetail("name %q", name)
	}
	r.elements[name] = f
	return nil
}

// NewRow instantiates the row strategy registered under name.
func (r *Registry) NewRow(name string) (RowMultiplier, error) {
	r.mu.RLock()
	f, ok := r.rows[name]
	r.mu.RUnlock()

	if !ok {
		return nil, dberror.Configuration("unknown row multiply strategy").
			WithDetail("name %q, known %v", name, r.RowNames())
	}
	return f(), nil
}

// NewElement instantiates the element strategy registered under name.
func (r *Registry) NewElement(name string) (ElementMultiplier, error) {
	r.mu.RLock()
	f, ok := r.elements[name]
	r.mu.RUnlock()

	if !ok {
		return nil, dberror.Configuration("unknown element multiply strategy").
			WithDetail("name %q, known %v", name, r.ElementNames())
	}
	return f(), nil
}

// RowNames lists registered row strategies.
func (r *Registry) RowNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.rows)
}

// ElementNames lists registered element strategies.
func (r *Registry) ElementNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.elements)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
