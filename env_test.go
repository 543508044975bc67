package bindery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/bindery/internal/typeinfo"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnv(t *testing.T) {
	path := writeEnvFile(t, "DB_DSN=postgres://localhost/app\nAPP_NAME=bindery\n")

	c := New()
	require.NoError(t, c.LoadEnv(path))

	dsn, err := c.Get("DB_DSN")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", dsn)

	name, err := c.Get("APP_NAME")
	require.NoError(t, err)
	assert.Equal(t, "bindery", name)
}

func TestLoadEnvFeedsScalarAutowiring(t *testing.T) {
	path := writeEnvFile(t, "DB_DSN=dsn://from-env\n")

	type server struct{ dsn string }

	reg := typeinfo.NewRegistry()
	require.NoError(t, reg.Add(&typeinfo.Descriptor{
		ID:   "server",
		Kind: typeinfo.Concrete,
		Params: []typeinfo.Param{
			{Name: "DB_DSN", Type: "string", Builtin: true},
		},
		New: func(args []any) (any, error) {
			return &server{dsn: args[0].(string)}, nil
		},
	}))

	c := New(WithIntrospector(reg))
	require.NoError(t, c.LoadEnv(path))

	got, err := c.Get("server")
	require.NoError(t, err)
	assert.Equal(t, "dsn://from-env", got.(*server).dsn)
}

func TestLoadEnvOverriddenByLaterBinding(t *testing.T) {
	path := writeEnvFile(t, "PORT=8080\n")

	c := New()
	require.NoError(t, c.LoadEnv(path))
	require.NoError(t, c.Set("PORT", 9090))

	got, err := c.Get("PORT")
	require.NoError(t, err)
	assert.Equal(t, 9090, got)
}

func TestLoadEnvMissingFile(t *testing.T) {
	c := New()

	err := c.LoadEnv(filepath.Join(t.TempDir(), "no-such.env"))
	var ce ContainerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "load-env", ce.Op)
	assert.Contains(t, ce.Target, "no-such.env")
}
