// Package bindery provides a string-keyed dependency injection container
// for Go applications. Identifiers are plain strings - either canonical type
// names or arbitrary binding keys - which makes the container a natural fit
// for configuration-driven wiring where type identity alone is not enough.
//
// # Overview
//
// bindery resolves an identifier to an instance by invoking a registered
// factory, returning a registered literal value, or autowiring a described
// type by recursively resolving its constructor parameters. The library
// provides:
//   - Explicit factory, literal value, and autowire bindings
//   - Alias names resolved transitively to one canonical identifier
//   - Lazy singleton instances with explicit eviction
//   - Constructor autowiring driven by an explicit type-descriptor table
//   - Method and function invocation with dependency-resolved arguments
//   - Cycle detection with the full resolution chain in the error
//   - Causally chained errors walkable with Explain
//
// # Basic Usage
//
// Create a container, register bindings, and resolve:
//
//	c := bindery.New()
//	c.Set("dsn", "postgres://localhost/app")
//	c.Singleton("db", func(r *bindery.Resolver) (any, error) {
//	    dsn, err := bindery.Resolve[string](r, "dsn")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return OpenDatabase(dsn)
//	})
//
//	db, err := bindery.Resolve[*Database](c, "db")
//
// # Autowiring
//
// Go carries no runtime information about constructor parameter names or
// defaults, so autowiring is driven by a descriptor table from the typeinfo
// registry, exposed through the TypeIntrospector interface. Descriptors are
// registered explicitly or derived from a constructor function by
// reflection. Once a type is described, resolving its identifier walks the
// constructor parameters: scalar parameters bind by parameter name, class
// parameters bind by canonical type name or recurse into autowiring.
//
// # Error Handling
//
// Failures inside user factories and constructors are always rewrapped
// with the container's own error types, preserving the original as a
// chained cause. Structural failures (unknown identifier, alias cycle,
// circular dependency, unresolvable parameter) are raised directly.
// Explain flattens any chain into ordered (kind, message) frames:
//
//	if _, err := c.Get("app"); err != nil {
//	    for _, frame := range bindery.Explain(err) {
//	        log.Printf("%s: %s", frame.Kind, frame.Message)
//	    }
//	}
//
// # Thread Safety
//
// Registration and resolution are safe for concurrent use. Each top-level
// Get or Invoke call carries its own resolution stack, so concurrent
// resolutions never interfere. A singleton identifier yields at most one
// cached instance for the container's lifetime, even under concurrent
// first resolution.
package bindery
