// Package statetest checks state.Backend implementations.
package statetest

import (
	"context"
	"testing"

	"github.com/bilgisen/autostudio/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBackendTests exercises the Get/Set/Delete contract against b.
func RunBackendTests(t *testing.T, b state.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := b.Get(ctx, "never-written")
		assert.ErrorIs(t, err, state.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "k1", []byte(`{"a":1}`)))
		got, err := b.Get(ctx, "k1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "k2", []byte(`"first"`)))
		require.NoError(t, b.Set(ctx, "k2", []byte(`"second"`)))
		got, err := b.Get(ctx, "k2")
		require.NoError(t, err)
		assert.Equal(t, `"second"`, string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "k3", []byte(`[]`)))
		require.NoError(t, b.Delete(ctx, "k3"))
		_, err := b.Get(ctx, "k3")
		assert.ErrorIs(t, err, state.ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := b.Delete(ctx, "never-written")
		if err != nil {
			assert.ErrorIs(t, err, state.ErrNotFound)
		}
	})
}
