package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is the authenticated publisher an API key resolves to.
type User struct {
	ID    uuid.UUID
	Login string
}

// Authenticator resolves the user behind an incoming request.
// The second return value is the raw credential presented, which callers use
// to bind follow-up requests to the same key.
type Authenticator interface {
	ResolveUser(r *http.Request) (*User, string, error)
}

// Keyring authenticates API keys of the form "keyID.secret". Only bcrypt
// hashes of secrets are held in memory; the keyID part is a plain lookup
// handle.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]entry
}

type entry struct {
	user User
	hash []byte
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string]entry)}
}

// Register adds a key with a pre-computed bcrypt hash of its secret.
func (k *Keyring) Register(keyID string, user User, secretHash []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[keyID] = entry{user: user, hash: secretHash}
}

// Issue creates a new API key for the user, registers it, and returns the
// raw key. The raw key is shown once and never stored.
func (k *Keyring) Issue(user User) (string, error) {
	idBytes := make([]byte, 8)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	secretBytes := make([]byte, 24)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", err
	}

	keyID := base64.RawURLEncoding.EncodeToString(idBytes)
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	k.Register(keyID, user, hash)
	return keyID + "." + secret, nil
}

// ResolveUser authenticates the Authorization header. It accepts either
// "Bearer <key>" or a bare key, matching what the eggs CLI sends.
func (k *Keyring) ResolveUser(r *http.Request) (*User, string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return nil, "", ErrMissingCredential
	}
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

	keyID, secret, ok := strings.Cut(raw, ".")
	if !ok || keyID == "" || secret == "" {
		return nil, "", ErrMalformedCredential
	}

	k.mu.RLock()
	e, found := k.keys[keyID]
	k.mu.RUnlock()
	if !found {
		return nil, "", ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword(e.hash, []byte(secret)); err != nil {
		return nil, "", ErrInvalidCredential
	}

	user := e.user
	return &user, raw, nil
}

// Fingerprint returns a stable digest of a raw credential. Sessions store
// this instead of the key itself.
func Fingerprint(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}
