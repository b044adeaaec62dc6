package registry

// Config holds HTTP surface settings loaded from the environment.
type Config struct {
	// MaxBodyBytes caps the request body accepted on publish routes.
	// Oversized bodies fail with 413 before any decoding happens.
	MaxBodyBytes int64 `env:"REGISTRY_MAX_BODY_BYTES" envDefault:"10485760"`
}
