package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "concrete", Concrete.String())
	assert.Equal(t, "interface", Interface.String())
	assert.Equal(t, "abstract", Abstract.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestRegistryAdd(t *testing.T) {
	reg := NewRegistry()

	t.Run("nil descriptor", func(t *testing.T) {
		assert.ErrorIs(t, reg.Add(nil), ErrNilDescriptor)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.ErrorIs(t, reg.Add(&Descriptor{Kind: Interface}), ErrEmptyID)
	})

	t.Run("concrete without construct", func(t *testing.T) {
		err := reg.Add(&Descriptor{ID: "x", Kind: Concrete})
		assert.ErrorIs(t, err, ErrNilConstruct)
	})

	t.Run("interface without construct", func(t *testing.T) {
		assert.NoError(t, reg.Add(&Descriptor{ID: "iface", Kind: Interface}))
	})

	t.Run("replaces previous descriptor", func(t *testing.T) {
		first := &Descriptor{ID: "svc", Kind: Interface}
		second := &Descriptor{ID: "svc", Kind: Abstract}
		require.NoError(t, reg.Add(first))
		require.NoError(t, reg.Add(second))

		d, ok := reg.Describe("svc")
		require.True(t, ok)
		assert.Equal(t, Abstract, d.Kind)
	})
}

func TestRegistryDescribe(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(&Descriptor{ID: "known", Kind: Interface}))

	_, ok := reg.Describe("known")
	assert.True(t, ok)

	_, ok = reg.Describe("unknown")
	assert.False(t, ok)
}

func TestRegistryConstruct(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(&Descriptor{
		ID:   "sum",
		Kind: Concrete,
		New: func(args []any) (any, error) {
			return args[0].(int) + args[1].(int), nil
		},
	}))
	require.NoError(t, reg.Add(&Descriptor{ID: "iface", Kind: Interface}))
	require.NoError(t, reg.Add(&Descriptor{
		ID:   "angry",
		Kind: Concrete,
		New: func(args []any) (any, error) {
			panic("nope")
		},
	}))

	t.Run("success", func(t *testing.T) {
		got, err := reg.Construct("sum", []any{2, 3})
		require.NoError(t, err)
		assert.Equal(t, 5, got)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := reg.Construct("missing", nil)
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("non-concrete", func(t *testing.T) {
		_, err := reg.Construct("iface", nil)
		assert.ErrorIs(t, err, ErrNotConstructed)
	})

	t.Run("panic recovered", func(t *testing.T) {
		_, err := reg.Construct("angry", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope")
	})
}

func TestRegistryRemoveAndClear(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(&Descriptor{ID: "a", Kind: Interface}))
	require.NoError(t, reg.Add(&Descriptor{ID: "b", Kind: Interface}))

	reg.Remove("a")
	_, ok := reg.Describe("a")
	assert.False(t, ok)
	_, ok = reg.Describe("b")
	assert.True(t, ok)

	reg.Clear()
	assert.Empty(t, reg.IDs())
}

func TestRegistryIDs(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(&Descriptor{ID: "a", Kind: Interface}))
	require.NoError(t, reg.Add(&Descriptor{ID: "b", Kind: Interface}))

	assert.ElementsMatch(t, []string{"a", "b"}, reg.IDs())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = reg.Add(&Descriptor{ID: "svc", Kind: Interface})
		}
	}()
	for i := 0; i < 100; i++ {
		reg.Describe("svc")
	}
	<-done

	var err error
	assert.NotPanics(t, func() {
		_, err = reg.Construct("svc", nil)
	})
	assert.ErrorIs(t, err, ErrNotConstructed)
}
