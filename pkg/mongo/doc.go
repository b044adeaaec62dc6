// Package mongo bootstraps the MongoDB client used by the document-backed
// catalog store: connection with startup retries, environment-driven
// configuration and a health probe.
package mongo
