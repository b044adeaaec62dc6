package catalog

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-process map. Used in tests and
// single-node development setups.
type MemoryStore struct {
	mu       sync.RWMutex
	packages map[string]*Package
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{packages: make(map[string]*Package)}
}

// GetPackage retrieves a package by name.
func (m *MemoryStore) GetPackage(ctx context.Context, name string) (*Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pkg, ok := m.packages[name]
	if !ok {
		return nil, ErrPackageNotFound
	}
	return copyPackage(pkg), nil
}

// ListPackages returns summaries sorted by name.
func (m *MemoryStore) ListPackages(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.packages))
	for _, pkg := range m.packages {
		summaries = append(summaries, Summarize(pkg))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// CreateUpload records a version, creating the package on first publish.
func (m *MemoryStore) CreateUpload(ctx context.Context, name string, isUpdate bool, owner uuid.UUID, upload Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = now
	}
	upload.Files = maps.Clone(upload.Files)

	pkg, ok := m.packages[name]
	if !ok {
		m.packages[name] = &Package{
			Name:      name,
			Owner:     owner,
			Uploads:   []Upload{upload},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return nil
	}

	if pkg.HasVersion(upload.Version) {
		return ErrVersionExists
	}

	pkg.Uploads = append(pkg.Uploads, upload)
	pkg.UpdatedAt = now
	return nil
}

func copyPackage(p *Package) *Package {
	cp := *p
	cp.Uploads = make([]Upload, len(p.Uploads))
	for i, u := range p.Uploads {
		cp.Uploads[i] = u
		cp.Uploads[i].Files = maps.Clone(u.Files)
	}
	return &cp
}
