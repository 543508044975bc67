package bindery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/junioryono/bindery/internal/typeinfo"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors that should be wrapped in typed errors when returned.
// Never return these directly to users - always wrap them with context.

var (
	// Registration errors.
	ErrEmptyID         = errors.New("identifier cannot be empty")
	ErrNilFactory      = errors.New("factory cannot be nil")
	ErrUnsupportedKind = errors.New("value kind is not bindable")
	ErrUnknownType     = errors.New("identifier does not name a described type")

	// Invocation errors.
	ErrNilFunction      = errors.New("function cannot be nil")
	ErrNotFunction      = errors.New("target must be a function")
	ErrNilTarget        = errors.New("target cannot be nil")
	ErrMethodNotFound   = errors.New("method not found")
	ErrVariadicFunction = errors.New("variadic functions are not supported")
)

var (
	_ error = NotFoundError{}
	_ error = BindingError{}
	_ error = AliasError{}
	_ error = AliasCycleError{}
	_ error = CircularDependencyError{}
	_ error = NotInstantiableError{}
	_ error = ParameterError{}
	_ error = FactoryError{}
	_ error = ConstructionError{}
	_ error = ContainerError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// NotFoundError indicates an identifier with no binding that also does not
// name a described type.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no binding or described type for %q", e.ID)
}

// BindingError indicates an invalid factory or value supplied at
// registration time.
type BindingError struct {
	ID    string
	Cause error
}

func (e BindingError) Error() string {
	return fmt.Sprintf("cannot bind %q: %v", e.ID, e.Cause)
}

func (e BindingError) Unwrap() error {
	return e.Cause
}

// AliasError indicates alias misuse detected eagerly at registration,
// such as aliasing an identifier to itself.
type AliasError struct {
	Alias  string
	Target string
}

func (e AliasError) Error() string {
	if e.Alias == e.Target {
		return fmt.Sprintf("alias %q cannot point to itself", e.Alias)
	}
	return fmt.Sprintf("invalid alias %q -> %q", e.Alias, e.Target)
}

// AliasCycleError indicates that canonicalizing an identifier revisited an
// alias already followed in the same lookup.
type AliasCycleError struct {
	Chain []string
}

func (e AliasCycleError) Error() string {
	return fmt.Sprintf("alias cycle detected: %s", formatChain(e.Chain))
}

// CircularDependencyError indicates that resolution re-entered an
// identifier already under construction in the same call.
type CircularDependencyError struct {
	Chain []string
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", formatChain(e.Chain))
}

// NotInstantiableError indicates an autowire target described as an
// interface or abstract type.
type NotInstantiableError struct {
	ID    string
	Kind  typeinfo.Kind
	Chain []string
}

func (e NotInstantiableError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("cannot instantiate %q: type is %s", e.ID, e.Kind))
	if len(e.Chain) > 1 {
		b.WriteString(fmt.Sprintf(" (while resolving %s)", formatChain(e.Chain)))
	}
	return b.String()
}

// ParameterError indicates a constructor, method, or function parameter
// that cannot be resolved.
type ParameterError struct {
	ID       string // identifier being constructed or invoked
	Param    string // parameter name, or its type id when unnamed
	Position int
	Reason   string
	Chain    []string
	Cause    error
}

func (e ParameterError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("cannot resolve parameter %q (position %d) of %q: %s",
		e.Param, e.Position, e.ID, e.Reason))
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}
	if len(e.Chain) > 1 {
		b.WriteString(fmt.Sprintf(" (while resolving %s)", formatChain(e.Chain)))
	}
	return b.String()
}

func (e ParameterError) Unwrap() error {
	return e.Cause
}

// FactoryError wraps a failure raised by a registered factory during
// invocation.
type FactoryError struct {
	ID    string
	Cause error
}

func (e FactoryError) Error() string {
	return fmt.Sprintf("factory for %q failed: %v", e.ID, e.Cause)
}

func (e FactoryError) Unwrap() error {
	return e.Cause
}

// ConstructionError wraps a failure raised by the underlying constructor
// call itself, after all arguments were resolved.
type ConstructionError struct {
	ID    string
	Chain []string
	Cause error
}

func (e ConstructionError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("construction of %q failed: %v", e.ID, e.Cause))
	if len(e.Chain) > 1 {
		b.WriteString(fmt.Sprintf(" (while resolving %s)", formatChain(e.Chain)))
	}
	return b.String()
}

func (e ConstructionError) Unwrap() error {
	return e.Cause
}

// ContainerError indicates a structural problem outside resolution proper,
// such as invoking a missing method or loading an unreadable env file.
type ContainerError struct {
	Op     string // "invoke-method", "invoke-func", "load-env", ...
	Target string
	Cause  error
}

func (e ContainerError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Target, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e ContainerError) Unwrap() error {
	return e.Cause
}

// ========================================
// Causal Chain Diagnostics
// ========================================

// Frame is one element of a flattened causal chain.
type Frame struct {
	Kind    string
	Message string
}

// Explain flattens an error's causal chain into ordered frames, outermost
// first. Each frame carries the container's error kind, or "error" for
// foreign causes at the bottom of the chain.
func Explain(err error) []Frame {
	var frames []Frame
	for err != nil {
		frames = append(frames, Frame{
			Kind:    kindOf(err),
			Message: err.Error(),
		})
		err = errors.Unwrap(err)
	}
	return frames
}

func kindOf(err error) string {
	switch err.(type) {
	case NotFoundError:
		return "NotFound"
	case BindingError:
		return "BindingError"
	case AliasError:
		return "AliasError"
	case AliasCycleError:
		return "AliasCycle"
	case CircularDependencyError:
		return "CircularDependency"
	case NotInstantiableError:
		return "NotInstantiable"
	case ParameterError:
		return "ParameterError"
	case FactoryError:
		return "FactoryError"
	case ConstructionError:
		return "ConstructionError"
	case ContainerError:
		return "ContainerError"
	default:
		return "error"
	}
}

// formatChain renders a resolution or alias chain for error messages.
func formatChain(chain []string) string {
	return strings.Join(chain, " -> ")
}
