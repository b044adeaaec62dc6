package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// DefaultLength is the number of random bytes per token. 16 bytes gives a
	// 22 character URL-safe identifier, which is short enough to pass around
	// and large enough that collisions among open sessions are negligible.
	DefaultLength = 16

	// DefaultMaxAttempts bounds collision retries in Unique. Exhausting it
	// means the exists check is broken or the store is corrupted; it cannot
	// happen by chance at realistic session counts.
	DefaultMaxAttempts = 10
)

// ExistsFunc reports whether a candidate token is already in use.
type ExistsFunc func(ctx context.Context, token string) (bool, error)

// Generator produces URL-safe random identifiers.
type Generator struct {
	length      int
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithLength sets the number of random bytes per token.
func WithLength(n int) Option {
	if n <= 0 {
		panic("token: WithLength requires a positive length")
	}
	return func(g *Generator) { g.length = n }
}

// WithMaxAttempts sets the collision retry bound for Unique.
func WithMaxAttempts(n int) Option {
	if n <= 0 {
		panic("token: WithMaxAttempts requires a positive count")
	}
	return func(g *Generator) { g.maxAttempts = n }
}

// NewGenerator returns a Generator with the given options applied.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		length:      DefaultLength,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a single URL-safe random token.
func (g *Generator) Generate() (string, error) {
	b := make([]byte, g.length)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Unique generates a token that does not collide with any token the exists
// check knows about. Retries are bounded; hitting the bound returns
// ErrExhausted rather than recursing forever.
func (g *Generator) Unique(ctx context.Context, exists ExistsFunc) (string, error) {
	if exists == nil {
		return g.Generate()
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		candidate, err := g.Generate()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("token: exists check failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrExhausted
}
