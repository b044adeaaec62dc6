package publish_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibakshay/nest.land/pkg/apikey"
	"github.com/ibakshay/nest.land/pkg/catalog"
	"github.com/ibakshay/nest.land/pkg/content"
	"github.com/ibakshay/nest.land/pkg/namepolicy"
	"github.com/ibakshay/nest.land/pkg/publish"
)

// memoryContent implements content.Storage in-process for service tests.
type memoryContent struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newMemoryContent() *memoryContent {
	return &memoryContent{objects: make(map[string][]byte)}
}

func (m *memoryContent) Put(ctx context.Context, name string, data []byte) (string, error) {
	if m.failPut != nil {
		return "", m.failPut
	}
	ref := content.Ref(data)
	m.mu.Lock()
	m.objects[ref] = data
	m.mu.Unlock()
	return ref, nil
}

func (m *memoryContent) Get(ctx context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[ref]
	if !ok {
		return nil, content.ErrNotFound
	}
	return data, nil
}

func (m *memoryContent) Exists(ctx context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[ref]
	return ok, nil
}

type fixture struct {
	svc     *publish.Service
	catalog *catalog.MemoryStore
	content *memoryContent
	store   *publish.MemoryStore
}

func newFixture(t *testing.T, opts ...publish.ServiceOption) *fixture {
	t.Helper()

	store := publish.NewMemoryStore(time.Minute, 0)
	t.Cleanup(store.Close)

	cat := catalog.NewMemoryStore()
	blobs := newMemoryContent()

	base := []publish.ServiceOption{publish.WithNamePolicy(namepolicy.AllowAll{})}
	svc := publish.NewService(store, cat, blobs, append(base, opts...)...)

	return &fixture{svc: svc, catalog: cat, content: blobs, store: store}
}

func testUser() *apikey.User {
	return &apikey.User{ID: uuid.New(), Login: "tester"}
}

func TestService_Initiate(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a session and returns its token", func(t *testing.T) {
		f := newFixture(t)
		user := testUser()

		tok, err := f.svc.Initiate(ctx, publish.InitiateRequest{
			Name:        "sample",
			Description: "d",
			Version:     "0.0.1",
		}, user, "key.secret")
		require.NoError(t, err)
		assert.NotEmpty(t, tok)

		session, err := f.store.Get(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "sample", session.Package)
		assert.Equal(t, "0.0.1", session.Version)
		assert.Equal(t, user.ID, session.Owner)
	})

	t.Run("missing credential", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Initiate(ctx, publish.InitiateRequest{Name: "sample"}, nil, "key.secret")
		assert.ErrorIs(t, err, publish.ErrMissingCredential)

		_, err = f.svc.Initiate(ctx, publish.InitiateRequest{Name: "sample"}, testUser(), "")
		assert.ErrorIs(t, err, publish.ErrMissingCredential)
	})

	t.Run("name shape rules", func(t *testing.T) {
		f := newFixture(t)
		user := testUser()

		for _, name := range []string{"", "with space", "scope@pkg", "tab\tname"} {
			_, err := f.svc.Initiate(ctx, publish.InitiateRequest{Name: name}, user, "key.secret")
			assert.ErrorIs(t, err, publish.ErrInvalidName, "name %q", name)
		}
	})

	t.Run("blocked name", func(t *testing.T) {
		deny, err := namepolicy.New(namepolicy.Config{Reserved: []string{"std"}})
		require.NoError(t, err)
		f := newFixture(t, publish.WithNamePolicy(deny))

		_, err = f.svc.Initiate(ctx, publish.InitiateRequest{Name: "std"}, testUser(), "key.secret")
		assert.ErrorIs(t, err, publish.ErrNameBlocked)
	})

	t.Run("version defaults and validates", func(t *testing.T) {
		f := newFixture(t)
		user := testUser()

		tok, err := f.svc.Initiate(ctx, publish.InitiateRequest{Name: "defaulted"}, user, "key.secret")
		require.NoError(t, err)

		session, err := f.store.Get(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, publish.DefaultVersion, session.Version)

		for _, version := range []string{"not-semver", "1.0", "v1.0.0", "1.0.0.0"} {
			_, err := f.svc.Initiate(ctx, publish.InitiateRequest{Name: "pkg", Version: version}, user, "key.secret")
			assert.ErrorIs(t, err, publish.ErrInvalidVersion, "version %q", version)
		}
	})

	t.Run("update conflict rules", func(t *testing.T) {
		f := newFixture(t)
		owner := testUser()
		require.NoError(t, f.catalog.CreateUpload(ctx, "existing", false, owner.ID, catalog.Upload{Version: "1.0.0"}))

		// Same owner, already published version.
		_, err := f.svc.Initiate(ctx, publish.InitiateRequest{Name: "existing", Update: true, Version: "1.0.0"}, owner, "key.secret")
		assert.ErrorIs(t, err, publish.ErrVersionExists)

		// Different user.
		_, err = f.svc.Initiate(ctx, publish.InitiateRequest{Name: "existing", Update: true, Version: "1.0.0"}, testUser(), "other.secret")
		assert.ErrorIs(t, err, publish.ErrNotOwner)

		// Same owner, fresh version.
		_, err = f.svc.Initiate(ctx, publish.InitiateRequest{Name: "existing", Update: true, Version: "1.1.0"}, owner, "key.secret")
		assert.NoError(t, err)
	})

	t.Run("existing package without update claim passes by default", func(t *testing.T) {
		f := newFixture(t)
		owner := testUser()
		require.NoError(t, f.catalog.CreateUpload(ctx, "existing", false, owner.ID, catalog.Upload{Version: "1.0.0"}))

		_, err := f.svc.Initiate(ctx, publish.InitiateRequest{Name: "existing", Version: "2.0.0"}, testUser(), "key.secret")
		assert.NoError(t, err)
	})

	t.Run("strict mode rejects existing package without update claim", func(t *testing.T) {
		f := newFixture(t, publish.WithStrictNewPackages(true))
		owner := testUser()
		require.NoError(t, f.catalog.CreateUpload(ctx, "existing", false, owner.ID, catalog.Upload{Version: "1.0.0"}))

		_, err := f.svc.Initiate(ctx, publish.InitiateRequest{Name: "existing", Version: "2.0.0"}, testUser(), "key.secret")
		assert.ErrorIs(t, err, publish.ErrPackageExists)
	})
}

func TestService_AddPieces(t *testing.T) {
	ctx := context.Background()

	initiate := func(t *testing.T, f *fixture, user *apikey.User, credential string) string {
		t.Helper()
		tok, err := f.svc.Initiate(ctx, publish.InitiateRequest{
			Name:        "sample",
			Description: "d",
			Version:     "0.0.1",
		}, user, credential)
		require.NoError(t, err)
		return tok
	}

	t.Run("accumulates across calls", func(t *testing.T) {
		f := newFixture(t)
		tok := initiate(t, f, testUser(), "key.secret")

		receipt, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{"mod.ts": []byte("a")}, false)
		require.NoError(t, err)
		assert.False(t, receipt.Done)
		assert.Equal(t, 1, receipt.Pieces)

		receipt, err = f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{"deps.ts": []byte("b")}, false)
		require.NoError(t, err)
		assert.Equal(t, 2, receipt.Pieces)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AddPieces(ctx, "ghost", "key.secret", nil, false)
		assert.ErrorIs(t, err, publish.ErrSessionNotFound)
	})

	t.Run("credential mismatch", func(t *testing.T) {
		f := newFixture(t)
		tok := initiate(t, f, testUser(), "key.secret")

		_, err := f.svc.AddPieces(ctx, tok, "other.secret", map[string][]byte{"a": []byte("x")}, false)
		assert.ErrorIs(t, err, publish.ErrCredentialMismatch)
	})

	t.Run("too many pieces in one call", func(t *testing.T) {
		f := newFixture(t, publish.WithMaxPiecesPerCall(2))
		tok := initiate(t, f, testUser(), "key.secret")

		_, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{
			"a": []byte("1"), "b": []byte("2"), "c": []byte("3"),
		}, false)
		assert.ErrorIs(t, err, publish.ErrTooManyPieces)
	})

	t.Run("final call publishes end to end", func(t *testing.T) {
		f := newFixture(t)
		user := testUser()
		tok := initiate(t, f, user, "key.secret")

		body := []byte("export const hello = 'world';\n")
		receipt, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{"mod.ts": body}, true)
		require.NoError(t, err)
		assert.True(t, receipt.Done)

		ref := receipt.Files["mod.ts"]
		require.NotEmpty(t, ref)

		stored, err := f.content.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, body, stored)

		pkg, err := f.catalog.GetPackage(ctx, "sample")
		require.NoError(t, err)
		assert.Equal(t, user.ID, pkg.Owner)
		require.Len(t, pkg.Uploads, 1)
		assert.Equal(t, "0.0.1", pkg.Uploads[0].Version)
		assert.Equal(t, "d", pkg.Uploads[0].Description)
		assert.Equal(t, ref, pkg.Uploads[0].Files["mod.ts"])

		// Session is consumed.
		_, err = f.svc.AddPieces(ctx, tok, "key.secret", nil, false)
		assert.ErrorIs(t, err, publish.ErrSessionNotFound)
	})

	t.Run("final call merges its own pieces", func(t *testing.T) {
		f := newFixture(t)
		tok := initiate(t, f, testUser(), "key.secret")

		_, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{"mod.ts": []byte("old")}, false)
		require.NoError(t, err)

		receipt, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{
			"mod.ts":    []byte("new"),
			"README.md": []byte("docs"),
		}, true)
		require.NoError(t, err)
		assert.Len(t, receipt.Files, 2)

		stored, err := f.content.Get(ctx, receipt.Files["mod.ts"])
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), stored)
	})

	t.Run("finalization failure consumes the session", func(t *testing.T) {
		f := newFixture(t)
		f.content.failPut = errors.New("bucket offline")
		tok := initiate(t, f, testUser(), "key.secret")

		_, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{"mod.ts": []byte("x")}, true)
		assert.ErrorIs(t, err, publish.ErrFinalizeFailed)

		// Nothing reached the catalog and the token is dead.
		_, err = f.catalog.GetPackage(ctx, "sample")
		assert.ErrorIs(t, err, catalog.ErrPackageNotFound)

		_, err = f.svc.AddPieces(ctx, tok, "key.secret", nil, false)
		assert.ErrorIs(t, err, publish.ErrSessionNotFound)
	})

	t.Run("version conflict at finalize", func(t *testing.T) {
		f := newFixture(t)
		owner := testUser()
		tok := initiate(t, f, owner, "key.secret")

		// Version lands while the session is open.
		require.NoError(t, f.catalog.CreateUpload(ctx, "sample", false, owner.ID, catalog.Upload{Version: "0.0.1"}))

		_, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{"mod.ts": []byte("x")}, true)
		assert.ErrorIs(t, err, publish.ErrVersionExists)
	})

	t.Run("concurrent final calls publish once", func(t *testing.T) {
		f := newFixture(t)
		tok := initiate(t, f, testUser(), "key.secret")

		_, err := f.svc.AddPieces(ctx, tok, "key.secret", map[string][]byte{"mod.ts": []byte("x")}, false)
		require.NoError(t, err)

		var published atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.svc.AddPieces(ctx, tok, "key.secret", nil, true); err == nil {
					published.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), published.Load())

		pkg, err := f.catalog.GetPackage(ctx, "sample")
		require.NoError(t, err)
		assert.Len(t, pkg.Uploads, 1)
	})
}
