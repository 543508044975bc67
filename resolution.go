package bindery

import (
	"fmt"

	"github.com/junioryono/bindery/internal/typeinfo"
)

// resolutionContext is the per-call stack of identifiers currently under
// construction. It lives only for one top-level Get or Invoke call and is
// never stored on the container, so concurrent resolutions stay
// independent.
type resolutionContext struct {
	stack  []string
	active map[string]bool
}

func newResolutionContext() *resolutionContext {
	return &resolutionContext{
		active: make(map[string]bool),
	}
}

// push adds an identifier to the stack, failing with the full chain when
// the identifier is already being resolved in this call.
func (ctx *resolutionContext) push(id string) error {
	if ctx.active[id] {
		return CircularDependencyError{Chain: append(ctx.chain(), id)}
	}
	ctx.active[id] = true
	ctx.stack = append(ctx.stack, id)
	return nil
}

// pop removes the most recent identifier. Callers defer it immediately
// after push so the stack unwinds on every exit path.
func (ctx *resolutionContext) pop() {
	last := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	delete(ctx.active, last)
}

// chain returns a copy of the current stack for error reporting.
func (ctx *resolutionContext) chain() []string {
	chain := make([]string, len(ctx.stack))
	copy(chain, ctx.stack)
	return chain
}

// autowire constructs the described type id by resolving each constructor
// parameter in declaration order. The caller has already pushed id onto
// the resolution stack.
func (c *Container) autowire(ctx *resolutionContext, id string) (any, error) {
	d, ok := c.types.Describe(id)
	if !ok {
		return nil, NotFoundError{ID: id}
	}
	if d.Kind != typeinfo.Concrete {
		return nil, NotInstantiableError{ID: id, Kind: d.Kind, Chain: ctx.chain()}
	}

	args := make([]any, len(d.Params))
	for i, p := range d.Params {
		v, err := c.resolveParam(ctx, id, i, p)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	out, err := c.types.Construct(id, args)
	if err != nil {
		return nil, ConstructionError{ID: id, Chain: ctx.chain(), Cause: err}
	}
	return out, nil
}

// resolveParam applies the constructor parameter decision table. Scalar
// parameters bind by parameter name; class parameters bind by canonical
// type id, falling back to recursive autowiring of described types.
func (c *Container) resolveParam(ctx *resolutionContext, id string, pos int, p typeinfo.Param) (any, error) {
	fail := func(reason string) error {
		return ParameterError{
			ID:       id,
			Param:    paramLabel(p),
			Position: pos,
			Reason:   reason,
			Chain:    ctx.chain(),
		}
	}

	switch {
	case p.Composite:
		return nil, fail("union and intersection types cannot be autowired")

	case p.Type == "":
		if p.HasDefault {
			return p.Default, nil
		}
		return nil, fail("parameter has no declared type and no default value")

	case p.Builtin:
		if p.Name != "" && c.HasBinding(p.Name) {
			return c.get(ctx, p.Name)
		}
		if p.HasDefault {
			return p.Default, nil
		}
		return nil, fail(fmt.Sprintf("no binding named %q and no default value", p.Name))
	}

	// Class or interface type.
	typeID, err := c.canonicalize(p.Type)
	if err != nil {
		return nil, err
	}
	if c.HasBinding(typeID) {
		return c.get(ctx, typeID)
	}
	if _, ok := c.types.Describe(typeID); ok {
		return c.get(ctx, typeID)
	}
	if p.Nullable && p.HasDefault && p.Default == nil {
		return nil, nil
	}
	return nil, fail(fmt.Sprintf("no binding or described type for %q", typeID))
}

func paramLabel(p typeinfo.Param) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Type != "" {
		return p.Type
	}
	return "_"
}
