// Package content stores published file bodies under content-addressed
// references (hex SHA-256 of the bytes). The publish finalizer writes every
// piece here before the catalog records the version, so a reference in the
// catalog always resolves.
//
// Two backends are provided: local disk for development and tests, and S3
// (or any S3-compatible service) for production.
package content
