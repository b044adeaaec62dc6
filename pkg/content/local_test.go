package content_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibakshay/nest.land/pkg/content"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("put then get round-trips", func(t *testing.T) {
		store, err := content.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		data := []byte("export const answer = 42;\n")
		ref, err := store.Put(ctx, "mod.ts", data)
		require.NoError(t, err)
		assert.Equal(t, content.Ref(data), ref)

		got, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("put is idempotent", func(t *testing.T) {
		store, err := content.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		data := []byte("same bytes")
		ref1, err := store.Put(ctx, "a.ts", data)
		require.NoError(t, err)
		ref2, err := store.Put(ctx, "b.ts", data)
		require.NoError(t, err)
		assert.Equal(t, ref1, ref2)
	})

	t.Run("get unknown ref", func(t *testing.T) {
		store, err := content.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		_, err = store.Get(ctx, content.Ref([]byte("never stored")))
		assert.ErrorIs(t, err, content.ErrNotFound)
	})

	t.Run("rejects malformed refs", func(t *testing.T) {
		store, err := content.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		_, err = store.Get(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, content.ErrInvalidRef)

		_, err = store.Exists(ctx, "not-a-ref")
		assert.ErrorIs(t, err, content.ErrInvalidRef)
	})

	t.Run("exists", func(t *testing.T) {
		store, err := content.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		ref, err := store.Put(ctx, "mod.ts", []byte("body"))
		require.NoError(t, err)

		ok, err := store.Exists(ctx, ref)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Exists(ctx, content.Ref([]byte("other")))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent puts of the same bytes", func(t *testing.T) {
		store, err := content.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		data := []byte("contended body")
		var wg sync.WaitGroup
		refs := make([]string, 10)
		for i := range refs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ref, err := store.Put(ctx, "mod.ts", data)
				assert.NoError(t, err)
				refs[i] = ref
			}()
		}
		wg.Wait()

		for _, ref := range refs {
			assert.Equal(t, content.Ref(data), ref)
		}
	})

	t.Run("empty root rejected", func(t *testing.T) {
		_, err := content.NewLocalStorage("")
		assert.ErrorIs(t, err, content.ErrInvalidConfig)
	})
}

func TestRef(t *testing.T) {
	ref := content.Ref([]byte("hello"))
	assert.Len(t, ref, 64)
	assert.True(t, content.ValidRef(ref))
	assert.False(t, content.ValidRef("ABC"))
	assert.NotEqual(t, ref, content.Ref([]byte("hello!")))
}
