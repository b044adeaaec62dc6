// Package pg bootstraps the registry's Postgres layer: a pgx/v5 connection
// pool with startup retries, goose schema migrations routed through the
// application logger, a health probe and error classification helpers used
// by the catalog store.
package pg
