package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVBackendContract runs a suite of tests to verify that a KVBackend implementation
// adheres to the defined interface contract.
func RunKVBackendContract(t *testing.T, backend KVBackend) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := backend.Set(ctx, key, []byte(`{"id":"proj-1"}`))
		require.NoError(t, err, "Set should not return error")

		got, err := backend.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, `{"id":"proj-1"}`, string(got))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, key, []byte("one")))
		require.NoError(t, backend.Set(ctx, key, []byte("two")))

		got, err := backend.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := backend.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, key, []byte("x")))

		err := backend.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = backend.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Delete should return ErrKeyNotFound")

		assert.NoError(t, backend.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("Keys", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, key+"-k", []byte("k")))

		keys, err := backend.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key+"-k")

		require.NoError(t, backend.Delete(ctx, key+"-k"))
		keys, err = backend.Keys(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, key+"-k")
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, key+"-a", []byte("a")))
		require.NoError(t, backend.Set(ctx, key+"-b", []byte("b")))

		require.NoError(t, backend.Clear(ctx))

		_, err := backend.Get(ctx, key+"-a")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		_, err = backend.Get(ctx, key+"-b")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)

		keys, err := backend.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
