// Package typeinfo implements the type-descriptor table that drives
// autowiring. Go keeps no runtime record of constructor parameter names or
// default values, so every autowirable type is described explicitly: either
// by registering a Descriptor or by deriving one from a constructor
// function with FromConstructor.
package typeinfo

import (
	"errors"
	"fmt"
	"sync"
)

// Kind classifies a described type.
type Kind int

const (
	// Concrete types can be constructed.
	Concrete Kind = iota

	// Interface types are known but not instantiable.
	Interface

	// Abstract types declare a constructor shape but cannot be
	// constructed themselves.
	Abstract
)

func (k Kind) String() string {
	switch k {
	case Concrete:
		return "concrete"
	case Interface:
		return "interface"
	case Abstract:
		return "abstract"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	ErrNilDescriptor  = errors.New("descriptor cannot be nil")
	ErrEmptyID        = errors.New("descriptor id cannot be empty")
	ErrNilConstruct   = errors.New("concrete descriptor must have a construct function")
	ErrNotConstructed = errors.New("type is not constructible")
	ErrUnknownType    = errors.New("type is not described")
)

// Param describes a single constructor or method parameter.
type Param struct {
	// Name is the declared parameter name, used for name-keyed scalar
	// bindings.
	Name string

	// Type is the canonical type id of the parameter, empty when the
	// parameter carries no declared type.
	Type string

	// Builtin marks scalar and other builtin types that carry no
	// identity of their own.
	Builtin bool

	// Composite marks union or intersection types from the source
	// model. Composite parameters are never autowired.
	Composite bool

	// HasDefault reports whether Default is meaningful.
	HasDefault bool

	// Default is the declared default value.
	Default any

	// Nullable reports whether the parameter accepts nil.
	Nullable bool
}

// Descriptor describes one type known to the registry.
type Descriptor struct {
	// ID is the canonical identifier of the type.
	ID string

	// Kind classifies the type. Only Concrete types construct.
	Kind Kind

	// Params lists constructor parameters in declaration order.
	Params []Param

	// Methods optionally lists parameter declarations per method name,
	// consumed by the invoker for named argument overrides.
	Methods map[string][]Param

	// New builds an instance from an ordered argument list. Required
	// for Concrete descriptors, ignored otherwise.
	New func(args []any) (any, error)
}

// Registry is a thread-safe table of type descriptors.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Descriptor),
	}
}

// Add registers a descriptor, replacing any previous descriptor with the
// same id.
func (r *Registry) Add(d *Descriptor) error {
	if d == nil {
		return ErrNilDescriptor
	}
	if d.ID == "" {
		return ErrEmptyID
	}
	if d.Kind == Concrete && d.New == nil {
		return fmt.Errorf("%w: %s", ErrNilConstruct, d.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[d.ID] = d
	return nil
}

// AddConstructor derives a descriptor from a constructor function and
// registers it. Parameter names are assigned positionally from names.
func (r *Registry) AddConstructor(id string, ctor any, names ...string) error {
	d, err := FromConstructor(id, ctor, names...)
	if err != nil {
		return err
	}
	return r.Add(d)
}

// Describe returns the descriptor for an id.
func (r *Registry) Describe(id string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[id]
	return d, ok
}

// Construct builds an instance of the identified type from an ordered
// argument list. Panics inside the construct function are recovered and
// returned as errors.
func (r *Registry) Construct(id string, args []any) (out any, err error) {
	r.mu.RLock()
	d, ok := r.types[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, id)
	}
	if d.Kind != Concrete || d.New == nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotConstructed, id, d.Kind)
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("constructor for %s panicked: %v", id, rec)
		}
	}()

	return d.New(args)
}

// Remove drops the descriptor for an id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, id)
}

// Clear drops all descriptors.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = make(map[string]*Descriptor)
}

// IDs returns the ids of all described types.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	return ids
}
