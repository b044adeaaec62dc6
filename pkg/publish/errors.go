package publish

import "errors"

var (
	// Initiate validation failures, in the order the checks run.
	ErrMissingCredential = errors.New("missing or malformed credential")
	ErrInvalidName       = errors.New("package name must be non-empty without '@' or whitespace")
	ErrNameBlocked       = errors.New("package name is blocked by policy")
	ErrInvalidVersion    = errors.New("version is not a valid semantic version")
	ErrNotOwner          = errors.New("package is owned by another user")
	ErrVersionExists     = errors.New("version already published")
	ErrPackageExists     = errors.New("package already exists")

	// Session store failures.
	ErrTokenTaken      = errors.New("publish token already in use")
	ErrSessionNotFound = errors.New("publish session not found")
	ErrInvalidSession  = errors.New("invalid publish session")

	// Accumulator and finalizer failures.
	ErrCredentialMismatch = errors.New("credential does not match publish session")
	ErrTooManyPieces      = errors.New("too many pieces in one call")
	ErrFinalizeFailed     = errors.New("failed to finalize publish")
)
