// Package catalog is the authoritative record of packages, their owners and
// their published versions. The publish finalizer commits here after all
// pieces are durably stored.
//
// Three Store implementations are provided: an in-memory map for tests and
// development, Postgres (pgx, schema managed by goose migrations), and
// MongoDB (one document per package with embedded uploads).
package catalog
