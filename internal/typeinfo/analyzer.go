package typeinfo

import (
	"errors"
	"fmt"
	"reflect"

	typetostring "github.com/samber/go-type-to-string"
)

var (
	ErrNilConstructor             = errors.New("constructor cannot be nil")
	ErrConstructorNotFunction     = errors.New("constructor must be a function")
	ErrConstructorNoReturn        = errors.New("constructor must return at least one value")
	ErrConstructorTooManyReturns  = errors.New("constructor must return at most 2 values")
	ErrConstructorInvalidSecond   = errors.New("constructor's second return value must be error")
	ErrConstructorVariadic        = errors.New("variadic constructors are not supported")
	ErrArgumentCountMismatch      = errors.New("argument count does not match constructor parameters")
	ErrArgumentNotAssignable      = errors.New("argument is not assignable to constructor parameter")
	ErrNilArgumentNotNullable     = errors.New("nil argument for non-nullable parameter")
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// FromConstructor derives a Concrete descriptor from a constructor
// function. Parameter types, builtin-ness, and nullability are read by
// reflection; parameter names are assigned positionally from names, since
// Go erases them at runtime. Parameters without a supplied name keep an
// empty name and therefore never match a name-keyed binding.
func FromConstructor(id string, ctor any, names ...string) (*Descriptor, error) {
	if ctor == nil {
		return nil, ErrNilConstructor
	}

	val := reflect.ValueOf(ctor)
	if !val.IsValid() || (val.Kind() == reflect.Func && val.IsNil()) {
		return nil, ErrNilConstructor
	}

	typ := val.Type()
	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: got %s", ErrConstructorNotFunction, typ)
	}
	if typ.IsVariadic() {
		return nil, ErrConstructorVariadic
	}

	switch typ.NumOut() {
	case 0:
		return nil, ErrConstructorNoReturn
	case 1:
	case 2:
		if !typ.Out(1).Implements(errType) {
			return nil, fmt.Errorf("%w: got %s", ErrConstructorInvalidSecond, typ.Out(1))
		}
	default:
		return nil, ErrConstructorTooManyReturns
	}

	params := make([]Param, typ.NumIn())
	for i := range params {
		pt := typ.In(i)
		name := ""
		if i < len(names) {
			name = names[i]
		}
		params[i] = Param{
			Name:     name,
			Type:     typetostring.GetReflectType(pt),
			Builtin:  isBuiltinKind(pt.Kind()),
			Nullable: isNilableKind(pt.Kind()),
		}
	}

	return &Descriptor{
		ID:     id,
		Kind:   Concrete,
		Params: params,
		New:    makeConstruct(val),
	}, nil
}

// makeConstruct wraps a constructor reflect.Value into the descriptor's
// construct function, converting untyped arguments and splitting out a
// trailing error return.
func makeConstruct(fn reflect.Value) func(args []any) (any, error) {
	typ := fn.Type()

	return func(args []any) (any, error) {
		if len(args) != typ.NumIn() {
			return nil, fmt.Errorf("%w: got %d, want %d",
				ErrArgumentCountMismatch, len(args), typ.NumIn())
		}

		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			pt := typ.In(i)
			if arg == nil {
				if !isNilableKind(pt.Kind()) {
					return nil, fmt.Errorf("%w: parameter %d (%s)",
						ErrNilArgumentNotNullable, i, pt)
				}
				in[i] = reflect.Zero(pt)
				continue
			}

			av := reflect.ValueOf(arg)
			if !av.Type().AssignableTo(pt) {
				if av.Type().ConvertibleTo(pt) && isBuiltinKind(pt.Kind()) && isBuiltinKind(av.Kind()) {
					// Numeric literals registered as a wider kind
					// still satisfy a narrower parameter.
					av = av.Convert(pt)
				} else {
					return nil, fmt.Errorf("%w: parameter %d wants %s, got %s",
						ErrArgumentNotAssignable, i, pt, av.Type())
				}
			}
			in[i] = av
		}

		out := fn.Call(in)
		if len(out) == 2 {
			if errVal := out[1].Interface(); errVal != nil {
				return nil, errVal.(error)
			}
		}
		return out[0].Interface(), nil
	}
}

func isBuiltinKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

func isNilableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}
