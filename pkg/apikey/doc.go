// Package apikey authenticates registry requests with API keys of the form
// "keyID.secret". Secrets are bcrypt-hashed at rest; the raw key is only seen
// in transit. Fingerprint produces the digest publish sessions pin so that
// every piece upload must present the key that opened the session.
package apikey
