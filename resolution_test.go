package bindery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/bindery/internal/testutil"
	"github.com/junioryono/bindery/internal/typeinfo"
)

// widget is constructed through inline descriptors exercising single
// parameter shapes.
type widget struct {
	arg any
}

// widgetRegistry describes a widget type with exactly one constructor
// parameter.
func widgetRegistry(t *testing.T, p typeinfo.Param) *typeinfo.Registry {
	t.Helper()

	reg := typeinfo.NewRegistry()
	require.NoError(t, reg.Add(&typeinfo.Descriptor{
		ID:     "widget",
		Kind:   typeinfo.Concrete,
		Params: []typeinfo.Param{p},
		New: func(args []any) (any, error) {
			return &widget{arg: args[0]}, nil
		},
	}))
	return reg
}

func TestAutowireScalarByParameterName(t *testing.T) {
	c := New(WithIntrospector(testutil.Registry()))

	// No binding named "dsn": the scalar parameter cannot resolve.
	_, err := c.Get(testutil.DatabaseID)
	var pe ParameterError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "dsn", pe.Param)

	// Binding the parameter's own name makes the same Get succeed.
	require.NoError(t, c.Set("dsn", "postgres://localhost/app"))

	got, err := c.Get(testutil.DatabaseID)
	require.NoError(t, err)
	db := got.(*testutil.Database)
	assert.Equal(t, "postgres://localhost/app", db.DSN)
}

func TestAutowireRecursesThroughDependencies(t *testing.T) {
	c := New(WithIntrospector(testutil.Registry()))
	require.NoError(t, c.Set("dsn", "dsn://deep"))

	got, err := c.Get(testutil.RepositoryID)
	require.NoError(t, err)

	repo := got.(*testutil.Repository)
	require.NotNil(t, repo.DB)
	assert.Equal(t, "dsn://deep", repo.DB.DSN)
}

func TestExplicitBindingBeatsAutowiring(t *testing.T) {
	c := New(WithIntrospector(testutil.Registry()))
	explicit := testutil.NewDatabase("explicit")
	require.NoError(t, c.Set(testutil.DatabaseID, explicit))

	got, err := c.Get(testutil.RepositoryID)
	require.NoError(t, err)

	repo := got.(*testutil.Repository)
	assert.Same(t, explicit, repo.DB)
}

func TestCircularDependencyDetection(t *testing.T) {
	c := New(WithIntrospector(testutil.Registry()))

	_, err := c.Get(testutil.CycleAID)
	var cde CircularDependencyError
	require.ErrorAs(t, err, &cde)

	wantChain := fmt.Sprintf("%s -> %s -> %s",
		testutil.CycleAID, testutil.CycleBID, testutil.CycleAID)
	assert.Contains(t, err.Error(), wantChain)
}

func TestResolutionStackUnwindsAfterFailure(t *testing.T) {
	c := New(WithIntrospector(testutil.Registry()))

	_, err := c.Get(testutil.CycleAID)
	require.Error(t, err)

	// The failed call must not poison later resolutions.
	require.NoError(t, c.Set("dsn", "dsn://after-failure"))
	got, err := c.Get(testutil.DatabaseID)
	require.NoError(t, err)
	assert.Equal(t, "dsn://after-failure", got.(*testutil.Database).DSN)
}

func TestFactorySelfReference(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("self", func(r *Resolver) (any, error) {
		return r.Get("self")
	}))

	_, err := c.Get("self")
	var cde CircularDependencyError
	require.ErrorAs(t, err, &cde)

	// The structural cycle surfaces wrapped in the factory's failure.
	var fe FactoryError
	assert.ErrorAs(t, err, &fe)
}

func TestNotInstantiable(t *testing.T) {
	c := New(WithIntrospector(testutil.Registry()))

	tests := []struct {
		name string
		id   string
		kind typeinfo.Kind
	}{
		{"interface", testutil.LoggerID, typeinfo.Interface},
		{"abstract", testutil.AbstractJobID, typeinfo.Abstract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Get(tt.id)
			var nie NotInstantiableError
			require.ErrorAs(t, err, &nie)
			assert.Equal(t, tt.id, nie.ID)
			assert.Equal(t, tt.kind, nie.Kind)
		})
	}
}

func TestUntypedParameter(t *testing.T) {
	t.Run("with default", func(t *testing.T) {
		reg := widgetRegistry(t, typeinfo.Param{Name: "x", HasDefault: true, Default: 7})
		c := New(WithIntrospector(reg))

		got, err := c.Get("widget")
		require.NoError(t, err)
		assert.Equal(t, 7, got.(*widget).arg)
	})

	t.Run("without default", func(t *testing.T) {
		reg := widgetRegistry(t, typeinfo.Param{Name: "x"})
		c := New(WithIntrospector(reg))

		_, err := c.Get("widget")
		var pe ParameterError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Reason, "no declared type")
	})
}

func TestCompositeParameterUnsupported(t *testing.T) {
	reg := widgetRegistry(t, typeinfo.Param{
		Name:      "dep",
		Type:      "A|B",
		Composite: true,
	})
	c := New(WithIntrospector(reg))

	// Binding an alternative changes nothing: composite shapes always fail.
	require.NoError(t, c.Set("A", "alternative"))

	_, err := c.Get("widget")
	var pe ParameterError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "union and intersection")
}

func TestScalarParameterDefault(t *testing.T) {
	param := typeinfo.Param{
		Name:       "port",
		Type:       "int",
		Builtin:    true,
		HasDefault: true,
		Default:    8080,
	}

	t.Run("default used without binding", func(t *testing.T) {
		c := New(WithIntrospector(widgetRegistry(t, param)))

		got, err := c.Get("widget")
		require.NoError(t, err)
		assert.Equal(t, 8080, got.(*widget).arg)
	})

	t.Run("named binding wins over default", func(t *testing.T) {
		c := New(WithIntrospector(widgetRegistry(t, param)))
		require.NoError(t, c.Set("port", 9090))

		got, err := c.Get("widget")
		require.NoError(t, err)
		assert.Equal(t, 9090, got.(*widget).arg)
	})
}

func TestNullableParameterWithNilDefault(t *testing.T) {
	reg := widgetRegistry(t, typeinfo.Param{
		Name:       "log",
		Type:       testutil.LoggerID,
		Nullable:   true,
		HasDefault: true,
		Default:    nil,
	})
	c := New(WithIntrospector(reg))

	got, err := c.Get("widget")
	require.NoError(t, err)
	assert.Nil(t, got.(*widget).arg)
}

func TestClassParameterUnresolvable(t *testing.T) {
	reg := widgetRegistry(t, typeinfo.Param{
		Name: "dep",
		Type: "missing.Type",
	})
	c := New(WithIntrospector(reg))

	_, err := c.Get("widget")
	var pe ParameterError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "missing.Type")
}

func TestClassParameterAliasCanonicalized(t *testing.T) {
	reg := widgetRegistry(t, typeinfo.Param{Name: "db", Type: "database"})
	c := New(WithIntrospector(reg))

	require.NoError(t, c.SetAlias("database", "db.primary"))
	require.NoError(t, c.Set("db.primary", testutil.NewDatabase("aliased")))

	got, err := c.Get("widget")
	require.NoError(t, err)
	assert.Equal(t, "aliased", got.(*widget).arg.(*testutil.Database).DSN)
}

func TestConstructionErrorWrapsCause(t *testing.T) {
	reg := typeinfo.NewRegistry()
	require.NoError(t, reg.Add(&typeinfo.Descriptor{
		ID:   "broken",
		Kind: typeinfo.Concrete,
		New: func(args []any) (any, error) {
			return nil, testutil.ErrConstructor
		},
	}))
	c := New(WithIntrospector(reg))

	_, err := c.Get("broken")
	var ce ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "broken", ce.ID)
	assert.True(t, errors.Is(err, testutil.ErrConstructor))
}

func TestConstructorPanicWrapped(t *testing.T) {
	reg := typeinfo.NewRegistry()
	require.NoError(t, reg.Add(&typeinfo.Descriptor{
		ID:   "explosive",
		Kind: typeinfo.Concrete,
		New: func(args []any) (any, error) {
			panic("short circuit")
		},
	}))
	c := New(WithIntrospector(reg))

	_, err := c.Get("explosive")
	var ce ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "short circuit")
}

func TestCausalChainThroughNestedFactories(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("inner", func(r *Resolver) (any, error) {
		return nil, testutil.ErrTest
	}))
	require.NoError(t, c.Set("outer", func(r *Resolver) (any, error) {
		return r.Get("inner")
	}))

	_, err := c.Get("outer")
	require.Error(t, err)

	// Outer FactoryError -> inner FactoryError -> root cause.
	frames := Explain(err)
	require.Len(t, frames, 3)
	assert.Equal(t, "FactoryError", frames[0].Kind)
	assert.Contains(t, frames[0].Message, "outer")
	assert.Equal(t, "FactoryError", frames[1].Kind)
	assert.Contains(t, frames[1].Message, "inner")
	assert.Equal(t, "error", frames[2].Kind)

	assert.True(t, errors.Is(err, testutil.ErrTest))
}

func TestIndependentCallsDoNotShareContext(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("svc", func(r *Resolver) (any, error) {
		return testutil.NewStamp(), nil
	}))

	// Sequential top-level calls each start from an empty stack.
	for i := 0; i < 3; i++ {
		_, err := c.Get("svc")
		require.NoError(t, err)
	}
}
