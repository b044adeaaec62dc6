// Package token generates short URL-safe random identifiers for publish
// sessions. Unique checks candidates against the session store and retries a
// bounded number of times on collision.
package token
