package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "token")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "token", []byte("abc")))
			value, err := store.Get(ctx, "token")
			require.NoError(t, err)
			require.Equal(t, []byte("abc"), value)

			// Overwrite wins.
			require.NoError(t, store.Set(ctx, "token", []byte("def")))
			value, err = store.Get(ctx, "token")
			require.NoError(t, err)
			require.Equal(t, []byte("def"), value)

			require.NoError(t, store.Delete(ctx, "token"))
			_, err = store.Get(ctx, "token")
			require.ErrorIs(t, err, ErrNotFound)

			// Delete is idempotent.
			require.NoError(t, store.Delete(ctx, "token"))
		})
	}
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "token", []byte("abc")))
			require.NoError(t, store.Set(ctx, "user", []byte(`{"role":"Admin"}`)))

			require.NoError(t, store.Clear(ctx))

			_, err := store.Get(ctx, "token")
			require.ErrorIs(t, err, ErrNotFound)
			_, err = store.Get(ctx, "user")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "token", []byte("abc")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), value)
}
