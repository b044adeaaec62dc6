// Package redis bootstraps the Redis client backing the distributed publish
// session store: URL-based configuration, connection with startup retries
// and a health probe.
package redis
