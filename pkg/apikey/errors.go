package apikey

import "errors"

var (
	// ErrMissingCredential indicates no Authorization header was presented.
	ErrMissingCredential = errors.New("apikey: missing credential")

	// ErrMalformedCredential indicates the presented key is not in keyID.secret form.
	ErrMalformedCredential = errors.New("apikey: malformed credential")

	// ErrInvalidCredential indicates the key does not resolve to a user.
	ErrInvalidCredential = errors.New("apikey: invalid credential")

	// ErrMalformedConfig indicates a statically provisioned key entry could not be parsed.
	ErrMalformedConfig = errors.New("apikey: malformed key configuration")
)
