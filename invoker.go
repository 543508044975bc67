package bindery

import (
	"errors"
	"fmt"
	"reflect"

	typetostring "github.com/samber/go-type-to-string"

	"github.com/junioryono/bindery/internal/typeinfo"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// InvokeFunc calls fn with arguments resolved from the container. Go
// erases parameter names at runtime, so in this path overrides are keyed
// by each parameter's canonical type id; an override entry is used
// verbatim, without type checking against the registry. A trailing error
// result is split out and returned as the call error.
func (c *Container) InvokeFunc(fn any, overrides map[string]any) ([]any, error) {
	if fn == nil {
		return nil, ContainerError{Op: "invoke-func", Cause: ErrNilFunction}
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, ContainerError{
			Op:     "invoke-func",
			Target: fmt.Sprintf("%T", fn),
			Cause:  ErrNotFunction,
		}
	}

	return c.callTyped(v, typetostring.GetReflectType(v.Type()), overrides)
}

// InvokeMethod calls a method on target with arguments resolved from the
// container. Target may be a live instance or a string identifier, which
// is resolved through Get first. When the receiver's type descriptor
// declares the method's parameters, overrides are matched by parameter
// name and scalar parameters resolve through bindings keyed by canonical
// type id; otherwise arguments resolve positionally by reflect type.
func (c *Container) InvokeMethod(target any, method string, overrides map[string]any) ([]any, error) {
	if target == nil {
		return nil, ContainerError{Op: "invoke-method", Target: method, Cause: ErrNilTarget}
	}

	var recv reflect.Value
	var typeID string

	if id, ok := target.(string); ok {
		inst, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		if inst == nil {
			return nil, ContainerError{Op: "invoke-method", Target: id, Cause: ErrNilTarget}
		}
		recv = reflect.ValueOf(inst)
		if typeID, err = c.canonicalize(id); err != nil {
			return nil, err
		}
	} else {
		recv = reflect.ValueOf(target)
		typeID = typetostring.GetReflectType(recv.Type())
	}

	m := recv.MethodByName(method)
	if !m.IsValid() {
		return nil, ContainerError{
			Op:     "invoke-method",
			Target: typeID + "." + method,
			Cause:  ErrMethodNotFound,
		}
	}

	label := typeID + "." + method
	if d, ok := c.types.Describe(typeID); ok {
		if params, ok := d.Methods[method]; ok {
			return c.callNamed(m, label, params, overrides)
		}
	}
	return c.callTyped(m, label, overrides)
}

// callNamed resolves arguments from declared parameters, honoring named
// overrides.
func (c *Container) callNamed(fn reflect.Value, label string, params []typeinfo.Param, overrides map[string]any) ([]any, error) {
	t := fn.Type()
	if t.IsVariadic() {
		return nil, ContainerError{Op: "invoke", Target: label, Cause: ErrVariadicFunction}
	}
	if t.NumIn() != len(params) {
		return nil, ContainerError{
			Op:     "invoke",
			Target: label,
			Cause: fmt.Errorf("descriptor declares %d parameters, callable takes %d",
				len(params), t.NumIn()),
		}
	}

	ctx := newResolutionContext()
	args := make([]any, len(params))
	for i, p := range params {
		if p.Name != "" {
			if v, ok := overrides[p.Name]; ok {
				args[i] = v
				continue
			}
		}

		v, err := c.resolveInvokeParam(ctx, label, i, p)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return call(fn, label, args)
}

// resolveInvokeParam applies the invocation-path parameter rules: every
// typed parameter, scalar or not, resolves through bindings keyed by its
// canonical type id. This deliberately differs from the constructor path,
// where scalars bind by parameter name.
func (c *Container) resolveInvokeParam(ctx *resolutionContext, label string, pos int, p typeinfo.Param) (any, error) {
	fail := func(reason string) error {
		return ParameterError{
			ID:       label,
			Param:    paramLabel(p),
			Position: pos,
			Reason:   reason,
		}
	}

	switch {
	case p.Composite:
		return nil, fail("union and intersection types cannot be resolved")
	case p.Type == "":
		if p.HasDefault {
			return p.Default, nil
		}
		return nil, fail("parameter has no declared type and no default value")
	}

	typeID, err := c.canonicalize(p.Type)
	if err != nil {
		return nil, err
	}
	if c.HasBinding(typeID) {
		return c.get(ctx, typeID)
	}
	if !p.Builtin {
		if _, ok := c.types.Describe(typeID); ok {
			return c.get(ctx, typeID)
		}
	}
	if p.HasDefault {
		return p.Default, nil
	}
	return nil, fail(fmt.Sprintf("no binding for type %q and no default value", typeID))
}

// callTyped resolves arguments positionally by reflect type. Overrides
// are keyed by canonical type id.
func (c *Container) callTyped(fn reflect.Value, label string, overrides map[string]any) ([]any, error) {
	t := fn.Type()
	if t.IsVariadic() {
		return nil, ContainerError{Op: "invoke", Target: label, Cause: ErrVariadicFunction}
	}

	ctx := newResolutionContext()
	args := make([]any, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		key := typetostring.GetReflectType(t.In(i))
		if v, ok := overrides[key]; ok {
			args[i] = v
			continue
		}

		v, err := c.get(ctx, key)
		if err != nil {
			var notFound NotFoundError
			if errors.As(err, &notFound) {
				return nil, ParameterError{
					ID:       label,
					Param:    key,
					Position: i,
					Reason:   "no binding for parameter type",
					Cause:    err,
				}
			}
			return nil, err
		}
		args[i] = v
	}

	return call(fn, label, args)
}

// call converts resolved arguments and invokes the callable, splitting a
// trailing error result out of the returned values. Panics inside the
// callable are rewrapped.
func call(fn reflect.Value, label string, args []any) (out []any, err error) {
	t := fn.Type()

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := t.In(i)
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}

		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			if av.Type().ConvertibleTo(pt) && isConvertibleScalar(av.Kind()) && isConvertibleScalar(pt.Kind()) {
				av = av.Convert(pt)
			} else {
				return nil, ParameterError{
					ID:       label,
					Param:    typetostring.GetReflectType(pt),
					Position: i,
					Reason:   fmt.Sprintf("value of type %s is not assignable to %s", av.Type(), pt),
				}
			}
		}
		in[i] = av
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = ContainerError{
				Op:     "invoke",
				Target: label,
				Cause:  fmt.Errorf("callable panicked: %v", rec),
			}
		}
	}()

	results := fn.Call(in)

	out = make([]any, 0, len(results))
	for i, rv := range results {
		if i == len(results)-1 && rv.Type().Implements(errorType) {
			if e, _ := rv.Interface().(error); e != nil {
				err = e
			}
			continue
		}
		out = append(out, rv.Interface())
	}
	return out, err
}

func isConvertibleScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
