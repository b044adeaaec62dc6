package publish_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibakshay/nest.land/pkg/publish"
)

func newSession(token string) *publish.Session {
	now := time.Now()
	return &publish.Session{
		Token:          token,
		Package:        "sample",
		Version:        "0.0.1",
		Owner:          uuid.New(),
		Pieces:         make(map[string][]byte),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(time.Minute),
	}
}

func TestMemoryStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and retrieves", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		require.NoError(t, store.Create(ctx, newSession("tok")))

		got, err := store.Get(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "sample", got.Package)
	})

	t.Run("rejects duplicate token", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		require.NoError(t, store.Create(ctx, newSession("tok")))
		assert.ErrorIs(t, store.Create(ctx, newSession("tok")), publish.ErrTokenTaken)
	})

	t.Run("rejects invalid session", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		assert.ErrorIs(t, store.Create(ctx, nil), publish.ErrInvalidSession)
		assert.ErrorIs(t, store.Create(ctx, &publish.Session{}), publish.ErrInvalidSession)
	})
}

func TestMemoryStore_AddPieces(t *testing.T) {
	ctx := context.Background()

	t.Run("merges last-write-wins", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		require.NoError(t, store.Create(ctx, newSession("tok")))

		_, err := store.AddPieces(ctx, "tok", map[string][]byte{
			"mod.ts":   []byte("one"),
			"deps.ts":  []byte("deps"),
		})
		require.NoError(t, err)

		got, err := store.AddPieces(ctx, "tok", map[string][]byte{
			"mod.ts": []byte("two"),
		})
		require.NoError(t, err)

		assert.Len(t, got.Pieces, 2)
		assert.Equal(t, []byte("two"), got.Pieces["mod.ts"])
		assert.Equal(t, []byte("deps"), got.Pieces["deps.ts"])
	})

	t.Run("unknown token", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		_, err := store.AddPieces(ctx, "ghost", map[string][]byte{"a": []byte("b")})
		assert.ErrorIs(t, err, publish.ErrSessionNotFound)
	})

	t.Run("concurrent merges lose nothing", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		require.NoError(t, store.Create(ctx, newSession("tok")))

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				name := fmt.Sprintf("file%d.ts", i)
				_, err := store.AddPieces(ctx, "tok", map[string][]byte{name: []byte("x")})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "tok")
		require.NoError(t, err)
		assert.Len(t, got.Pieces, 50)
	})
}

func TestMemoryStore_Take(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the session", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		require.NoError(t, store.Create(ctx, newSession("tok")))

		taken, err := store.Take(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "tok", taken.Token)

		_, err = store.Get(ctx, "tok")
		assert.ErrorIs(t, err, publish.ErrSessionNotFound)
	})

	t.Run("only one concurrent taker wins", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		require.NoError(t, store.Create(ctx, newSession("tok")))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.Take(ctx, "tok"); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("expired sessions are invisible", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		session := newSession("tok")
		session.ExpiresAt = time.Now().Add(-time.Second)
		require.NoError(t, store.Create(ctx, session))

		_, err := store.Get(ctx, "tok")
		assert.ErrorIs(t, err, publish.ErrSessionNotFound)

		_, err = store.Take(ctx, "tok")
		assert.ErrorIs(t, err, publish.ErrSessionNotFound)
	})

	t.Run("exists still reports expired tokens", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		session := newSession("tok")
		session.ExpiresAt = time.Now().Add(-time.Second)
		require.NoError(t, store.Create(ctx, session))

		ok, err := store.Exists(ctx, "tok")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("DeleteExpired sweeps", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Minute, 0)
		defer store.Close()

		expired := newSession("old")
		expired.ExpiresAt = time.Now().Add(-time.Second)
		require.NoError(t, store.Create(ctx, expired))
		require.NoError(t, store.Create(ctx, newSession("live")))

		require.NoError(t, store.DeleteExpired(ctx))

		ok, err := store.Exists(ctx, "old")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Exists(ctx, "live")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("piece calls refresh expiry", func(t *testing.T) {
		store := publish.NewMemoryStore(time.Hour, 0)
		defer store.Close()

		session := newSession("tok")
		session.ExpiresAt = time.Now().Add(time.Second)
		require.NoError(t, store.Create(ctx, session))

		got, err := store.AddPieces(ctx, "tok", map[string][]byte{"a.ts": []byte("x")})
		require.NoError(t, err)
		assert.True(t, got.ExpiresAt.After(time.Now().Add(30*time.Minute)))
	})
}

func TestMemoryStore_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := publish.NewMemoryStore(time.Minute, 0)
	defer store.Close()

	session := newSession("tok")
	session.Pieces["mod.ts"] = []byte("original")
	require.NoError(t, store.Create(ctx, session))

	got, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	got.Pieces["mod.ts"][0] = 'X'

	fresh, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), fresh.Pieces["mod.ts"])
}
