package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Storage persists piece bodies under content-addressed references.
//
// Put is idempotent: storing the same bytes twice yields the same reference,
// so a retried finalization never duplicates data. Implementations must be
// safe for concurrent use because the finalizer fans out one Put per piece.
type Storage interface {
	// Put stores data and returns its reference. The name is advisory
	// (used for content-type hints and diagnostics), the reference depends
	// only on the bytes.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get retrieves the bytes stored under ref.
	Get(ctx context.Context, ref string) ([]byte, error)

	// Exists reports whether ref is already stored.
	Exists(ctx context.Context, ref string) (bool, error)
}

var refPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Ref computes the content reference for data: lowercase hex SHA-256.
func Ref(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ValidRef reports whether ref has the shape produced by Ref. Backends use
// it to reject path traversal through crafted references.
func ValidRef(ref string) bool {
	return refPattern.MatchString(ref)
}
