package bindery

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/junioryono/bindery/internal/typeinfo"
)

// TypeIntrospector is the external collaborator that describes and
// constructs types for autowiring. The default implementation is the
// typeinfo registry; any custom table implementing this interface can be
// supplied with WithIntrospector.
type TypeIntrospector interface {
	// Describe returns the descriptor for a canonical type id.
	Describe(id string) (*typeinfo.Descriptor, bool)

	// Construct builds an instance from an ordered argument list. Errors
	// and recovered panics are returned; the container rewraps them into
	// its own error types.
	Construct(id string, args []any) (any, error)
}

// Container is a string-keyed dependency injection container. The zero
// value is not usable; create instances with New.
type Container struct {
	id    string
	types TypeIntrospector

	mu       sync.RWMutex
	bindings map[string]*binding
	aliases  map[string]string

	singletons *singletonCache
}

// New creates an empty container. Without options it uses a fresh, empty
// typeinfo registry, so only factory and literal bindings resolve until
// types are described.
func New(opts ...Option) *Container {
	c := &Container{
		id:         uuid.NewString(),
		types:      typeinfo.NewRegistry(),
		bindings:   make(map[string]*binding),
		aliases:    make(map[string]string),
		singletons: newSingletonCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the container's unique instance id, useful for telling
// containers apart in logs and test output.
func (c *Container) ID() string {
	return c.id
}

func (c *Container) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("bindery.Container(%s, %d bindings)", c.id[:8], len(c.bindings))
}

// Types returns the container's type introspector.
func (c *Container) Types() TypeIntrospector {
	return c.types
}

// ========================================
// Registration
// ========================================

// Set registers a binding for id. The value may be a Factory, a literal
// value (boolean, number, string, collection, struct, or reference), or
// nil to autowire id as a type name. Registering replaces any previous
// binding and evicts a cached singleton for the id.
func (c *Container) Set(id string, value any) error {
	return c.bind(id, value, false)
}

// Singleton registers a binding like Set, wrapped so the first resolution
// caches its result for the container's lifetime. At most one instance is
// ever cached per id, even under concurrent first resolution.
func (c *Container) Singleton(id string, value any) error {
	return c.bind(id, value, true)
}

func (c *Container) bind(id string, value any, singleton bool) error {
	if id == "" {
		return BindingError{ID: id, Cause: ErrEmptyID}
	}

	key, err := c.canonicalize(id)
	if err != nil {
		return err
	}

	b, err := c.normalize(key, value)
	if err != nil {
		return err
	}
	b.singleton = singleton

	c.mu.Lock()
	c.bindings[key] = b
	c.mu.Unlock()

	// A replaced binding must not serve a stale instance.
	c.singletons.forget(key)
	return nil
}

// SetAlias registers alias as an alternative name for target. The target
// does not have to be bound yet; canonicalization is deferred to lookup,
// so aliases may be declared in any order. Self-aliasing fails eagerly.
func (c *Container) SetAlias(alias, target string) error {
	if alias == "" || target == "" {
		return AliasError{Alias: alias, Target: target}
	}
	if alias == target {
		return AliasError{Alias: alias, Target: target}
	}

	c.mu.Lock()
	c.aliases[alias] = target
	c.mu.Unlock()
	return nil
}

// ========================================
// Lookup
// ========================================

// Get resolves id to an instance: canonicalize, invoke a registered
// binding, or autowire a described type. A fresh resolution stack is
// created per call, so independent Gets never interfere.
func (c *Container) Get(id string) (any, error) {
	return c.get(newResolutionContext(), id)
}

func (c *Container) get(ctx *resolutionContext, id string) (any, error) {
	key, err := c.canonicalize(id)
	if err != nil {
		return nil, err
	}

	if err := ctx.push(key); err != nil {
		return nil, err
	}
	defer ctx.pop()

	c.mu.RLock()
	b := c.bindings[key]
	c.mu.RUnlock()

	if b != nil {
		if b.singleton {
			return c.resolveSingleton(ctx, key, b)
		}
		return c.build(ctx, key, b)
	}

	if _, ok := c.types.Describe(key); ok {
		return c.autowire(ctx, key)
	}
	return nil, NotFoundError{ID: key}
}

// HasBinding reports whether an explicit binding is registered for id,
// ignoring autowirability.
func (c *Container) HasBinding(id string) bool {
	key, err := c.canonicalize(id)
	if err != nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[key]
	return ok
}

// Has reports whether id can be resolved: a binding is registered, or the
// introspector describes id as an instantiable type.
func (c *Container) Has(id string) bool {
	key, err := c.canonicalize(id)
	if err != nil {
		return false
	}

	c.mu.RLock()
	_, bound := c.bindings[key]
	c.mu.RUnlock()
	if bound {
		return true
	}

	d, ok := c.types.Describe(key)
	return ok && d.Kind == typeinfo.Concrete
}

// Bindings returns the sorted canonical ids of all registered bindings.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.bindings))
	for id := range c.bindings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ========================================
// Housekeeping
// ========================================

// Forget evicts the binding and cached singleton for id. When id itself
// is an alias, the alias link is dropped as well. Forget has no
// resolution side effects.
func (c *Container) Forget(id string) {
	key, err := c.canonicalize(id)
	if err != nil {
		return
	}

	c.mu.Lock()
	delete(c.bindings, key)
	delete(c.aliases, id)
	c.mu.Unlock()

	c.singletons.forget(key)
}

// Clear evicts all bindings, aliases, and cached singletons.
func (c *Container) Clear() {
	c.mu.Lock()
	c.bindings = make(map[string]*binding)
	c.aliases = make(map[string]string)
	c.mu.Unlock()

	c.singletons.clear()
}

// ========================================
// Alias canonicalization
// ========================================

// canonicalize follows alias links until a non-aliased identifier is
// reached. A per-call seen set detects chains that revisit an id.
func (c *Container) canonicalize(id string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	current := id
	var chain []string
	var seen map[string]bool

	for {
		target, ok := c.aliases[current]
		if !ok {
			return current, nil
		}

		if seen == nil {
			seen = map[string]bool{current: true}
			chain = []string{current}
		}
		if seen[target] {
			return "", AliasCycleError{Chain: append(chain, target)}
		}

		seen[target] = true
		chain = append(chain, target)
		current = target
	}
}

// ========================================
// Resolver view
// ========================================

// Resolver is the resolution-scoped view of a container handed to
// factories. It shares the originating call's resolution stack, so
// lookups made inside a factory participate in cycle detection.
type Resolver struct {
	container *Container
	ctx       *resolutionContext
}

// Get resolves id within the current resolution call.
func (r *Resolver) Get(id string) (any, error) {
	return r.container.get(r.ctx, id)
}

// Has reports whether id can be resolved.
func (r *Resolver) Has(id string) bool {
	return r.container.Has(id)
}

// HasBinding reports whether an explicit binding exists for id.
func (r *Resolver) HasBinding(id string) bool {
	return r.container.HasBinding(id)
}

// Container returns the underlying container.
func (r *Resolver) Container() *Container {
	return r.container
}
