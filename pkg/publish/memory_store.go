package publish

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. A background ticker
// sweeps expired sessions so abandoned publishes do not pile up.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

// NewMemoryStore creates an in-memory session store. Sessions idle longer
// than ttl are treated as gone; a cleanupInterval of zero disables the
// background sweep (expired sessions are still invisible to Get and Take).
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

// Create inserts a new session.
func (m *MemoryStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[session.Token]; ok && !existing.IsExpired() {
		return ErrTokenTaken
	}

	m.sessions[session.Token] = session.Clone()
	return nil
}

// Get retrieves a live session.
func (m *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok || session.IsExpired() {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Exists reports whether a token is in use, expired or not.
func (m *MemoryStore) Exists(ctx context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sessions[token]
	return ok, nil
}

// AddPieces merges pieces into the session under the write lock so
// concurrent calls for the same token never lose updates.
func (m *MemoryStore) AddPieces(ctx context.Context, token string, pieces map[string][]byte) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok || session.IsExpired() {
		return nil, ErrSessionNotFound
	}

	session.Merge(clonePieces(pieces), time.Now(), m.ttl)
	return session.Clone(), nil
}

// Take atomically removes and returns a live session.
func (m *MemoryStore) Take(ctx context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(m.sessions, token)

	if session.IsExpired() {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session if present.
func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// DeleteExpired removes all expired sessions.
func (m *MemoryStore) DeleteExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, session := range m.sessions {
		if session.IsExpired() {
			delete(m.sessions, token)
		}
	}
	return nil
}

// Close stops the background cleanup goroutine.
func (m *MemoryStore) Close() {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}

func clonePieces(pieces map[string][]byte) map[string][]byte {
	cp := make(map[string][]byte, len(pieces))
	for name, data := range pieces {
		buf := make([]byte, len(data))
		copy(buf, data)
		cp[name] = buf
	}
	return cp
}
