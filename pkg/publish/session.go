package publish

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Session is one in-flight publish attempt. It is created by Initiate,
// accumulates pieces across any number of accumulator calls, and is removed
// atomically when the final call takes it for finalization.
type Session struct {
	Token       string    `json:"token"`
	Package     string    `json:"package"`
	Version     string    `json:"version"`
	Update      bool      `json:"update"`
	Description string    `json:"description"`
	Owner       uuid.UUID `json:"owner"`

	// CredentialFingerprint ties the session to the credential that opened
	// it. Accumulator calls must present the same credential.
	CredentialFingerprint string `json:"credential_fingerprint"`

	// Pieces maps file names to raw bodies. Re-sending a name overwrites
	// the previous body.
	Pieces map[string][]byte `json:"pieces"`

	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry time.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Merge applies pieces last-write-wins and records the activity.
func (s *Session) Merge(pieces map[string][]byte, now time.Time, ttl time.Duration) {
	if s.Pieces == nil {
		s.Pieces = make(map[string][]byte, len(pieces))
	}
	maps.Copy(s.Pieces, pieces)
	s.LastActivityAt = now
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s *Session) Clone() *Session {
	cp := *s
	if s.Pieces != nil {
		cp.Pieces = make(map[string][]byte, len(s.Pieces))
		for name, data := range s.Pieces {
			buf := make([]byte, len(data))
			copy(buf, data)
			cp.Pieces[name] = buf
		}
	}
	return &cp
}
