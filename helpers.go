package bindery

import "fmt"

// Getter is the minimal resolving surface, satisfied by both *Container
// and *Resolver.
type Getter interface {
	Get(id string) (any, error)
}

// Resolve resolves id and type-asserts the result.
//
//	db, err := bindery.Resolve[*Database](c, "db")
func Resolve[T any](g Getter, id string) (T, error) {
	var zero T

	v, err := g.Get(id)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, ContainerError{
			Op:     "resolve",
			Target: id,
			Cause:  fmt.Errorf("resolved %T, want %T", v, zero),
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on failure. Intended for
// bootstrap code where a missing binding is a programming error.
func MustResolve[T any](g Getter, id string) T {
	v, err := Resolve[T](g, id)
	if err != nil {
		panic(err)
	}
	return v
}
