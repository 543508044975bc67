package bindery

import (
	"fmt"
	"reflect"
	"sync"
)

// Factory builds a value on demand. The Resolver shares the resolution
// stack of the call that triggered the factory, so lookups made inside a
// factory participate in cycle detection and causal error chains.
type Factory func(r *Resolver) (any, error)

// bindingKind is the tagged variant of a binding, decided once at
// registration time.
type bindingKind int

const (
	kindFactory bindingKind = iota
	kindLiteral
	kindAutowire
)

// binding maps a canonical identifier to one way of producing a value.
type binding struct {
	kind      bindingKind
	factory   Factory // kindFactory
	value     any     // kindLiteral
	singleton bool
}

// normalize turns the polymorphic Set/Singleton argument into a binding.
func (c *Container) normalize(id string, value any) (*binding, error) {
	switch v := value.(type) {
	case nil:
		// Autowire the identifier as a type name.
		if _, ok := c.types.Describe(id); !ok {
			return nil, BindingError{ID: id, Cause: ErrUnknownType}
		}
		return &binding{kind: kindAutowire}, nil
	case Factory:
		if v == nil {
			return nil, BindingError{ID: id, Cause: ErrNilFactory}
		}
		return &binding{kind: kindFactory, factory: v}, nil
	case func(r *Resolver) (any, error):
		if v == nil {
			return nil, BindingError{ID: id, Cause: ErrNilFactory}
		}
		return &binding{kind: kindFactory, factory: v}, nil
	}

	if !bindableKind(reflect.ValueOf(value).Kind()) {
		return nil, BindingError{
			ID:    id,
			Cause: fmt.Errorf("%w: %T", ErrUnsupportedKind, value),
		}
	}
	return &binding{kind: kindLiteral, value: value}, nil
}

// bindableKind reports whether a value of this kind may be registered as a
// literal: booleans, numbers, strings, collections, and object references.
func bindableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return false
	default:
		return true
	}
}

// build produces a value for a resolved binding.
func (c *Container) build(ctx *resolutionContext, id string, b *binding) (any, error) {
	switch b.kind {
	case kindLiteral:
		return b.value, nil
	case kindFactory:
		return c.runFactory(ctx, id, b.factory)
	default:
		return c.autowire(ctx, id)
	}
}

// runFactory invokes a registered factory, rewrapping both returned errors
// and panics as FactoryError tagged with the binding id.
func (c *Container) runFactory(ctx *resolutionContext, id string, f Factory) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = FactoryError{ID: id, Cause: fmt.Errorf("factory panicked: %v", rec)}
		}
	}()

	v, ferr := f(&Resolver{container: c, ctx: ctx})
	if ferr != nil {
		return nil, FactoryError{ID: id, Cause: ferr}
	}
	return v, nil
}

// singletonCache holds resolved singleton instances. Each identifier gets
// its own entry lock so first resolution of one singleton never blocks
// resolution of another, while concurrent first resolutions of the same
// identifier serialize and yield a single cached instance.
type singletonCache struct {
	mu      sync.Mutex
	entries map[string]*singletonEntry
}

type singletonEntry struct {
	mu   sync.Mutex
	done bool
	val  any
}

func newSingletonCache() *singletonCache {
	return &singletonCache{
		entries: make(map[string]*singletonEntry),
	}
}

func (s *singletonCache) entry(id string) *singletonEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		e = &singletonEntry{}
		s.entries[id] = e
	}
	return e
}

func (s *singletonCache) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *singletonCache) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*singletonEntry)
}

// resolveSingleton returns the cached instance for id, building it under
// the entry lock on first resolution. A failed build caches nothing, so a
// later call retries.
func (c *Container) resolveSingleton(ctx *resolutionContext, id string, b *binding) (any, error) {
	e := c.singletons.entry(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return e.val, nil
	}

	v, err := c.build(ctx, id, b)
	if err != nil {
		return nil, err
	}

	e.val = v
	e.done = true
	return v, nil
}
