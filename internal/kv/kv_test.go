package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "storefront.db")
	s, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
	}

	for name, mk := range stores {
		mk := mk
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := mk(t)

			_, ok, err := s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "cart", `[{"id":1}]`))
			v, ok, err := s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1}]`, v)

			require.NoError(t, s.Set(ctx, "cart", `[]`))
			v, _, err = s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.Equal(t, `[]`, v)

			require.NoError(t, s.Set(ctx, "orders", `[]`))
			require.NoError(t, s.Set(ctx, "user", `{}`))

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"cart", "orders", "user"}, keys)

			require.NoError(t, s.Remove(ctx, "cart", "user", "missing"))
			keys, err = s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"orders"}, keys)

			assert.ErrorIs(t, s.Set(ctx, "", "x"), ErrEmptyKey)
			require.NoError(t, s.Remove(ctx))
		})
	}
}

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), DriverSQLite, "")
	require.Error(t, err)

	_, err = Open(context.Background(), "redis", "x")
	require.Error(t, err)
}

func TestDialector(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{DriverSQLite, DriverPostgres, DriverLibPQ, ""} {
		d, err := dialector(driver, "dsn")
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}
	d, err := dialector(DriverLibPQ, "postgres://localhost/db")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}
