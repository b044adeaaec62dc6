package publish

import "time"

// Config holds publish pipeline settings loaded from the environment.
type Config struct {
	SessionTTL      time.Duration `env:"PUBLISH_SESSION_TTL" envDefault:"15m"`     // SessionTTL is how long an idle session survives; each piece call refreshes it.
	CleanupInterval time.Duration `env:"PUBLISH_CLEANUP_INTERVAL" envDefault:"1m"` // CleanupInterval is how often the in-memory store sweeps expired sessions.

	TokenLength      int `env:"PUBLISH_TOKEN_LENGTH" envDefault:"16"`        // TokenLength is the number of random bytes per session token.
	MaxPiecesPerCall int `env:"PUBLISH_MAX_PIECES_PER_CALL" envDefault:"64"` // MaxPiecesPerCall bounds the piece map accepted in a single call.

	// StrictNewPackages rejects initiation against an existing package when
	// the request does not claim an update. Off by default: the registry
	// historically let such requests through and failed them later on
	// version conflict.
	StrictNewPackages bool `env:"PUBLISH_STRICT_NEW_PACKAGES" envDefault:"false"`
}
