package token

import "errors"

var (
	// ErrGeneration indicates the system random source failed.
	ErrGeneration = errors.New("token: random generation failed")

	// ErrExhausted indicates every generated candidate collided with an
	// existing token. This should never occur in practice and points at a
	// corrupted session store.
	ErrExhausted = errors.New("token: exhausted unique generation attempts")
)
