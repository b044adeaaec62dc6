// Package namepolicy filters package names against a configurable denylist
// of reserved names and regular expression patterns. The publish initiator
// consults it before opening a session so blocked names never reach the
// catalog.
package namepolicy
