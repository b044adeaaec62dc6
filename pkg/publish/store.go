package publish

import "context"

// Store persists publish sessions keyed by token.
//
// AddPieces and Take must be atomic per token: the protocol relies on
// read-modify-write merges never losing updates and on exactly one caller
// winning the final take even under concurrent requests.
type Store interface {
	// Create inserts a new session. Fails with ErrTokenTaken if the token
	// is already in use.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a live session. Expired or unknown tokens return
	// ErrSessionNotFound.
	Get(ctx context.Context, token string) (*Session, error)

	// Exists reports whether a token is in use, expired sessions included.
	// Used by the token generator's collision check.
	Exists(ctx context.Context, token string) (bool, error)

	// AddPieces merges pieces into the session last-write-wins, refreshes
	// its expiry and returns the updated session.
	AddPieces(ctx context.Context, token string, pieces map[string][]byte) (*Session, error)

	// Take atomically removes and returns a live session. At most one
	// concurrent caller succeeds; the rest get ErrSessionNotFound.
	Take(ctx context.Context, token string) (*Session, error)

	// Delete removes a session if present.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions. Backends with native key
	// expiry may implement it as a no-op.
	DeleteExpired(ctx context.Context) error
}
