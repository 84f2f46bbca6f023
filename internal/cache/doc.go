// Package cache provides a two-level cache for checker sub-call results.
//
// Entries are keyed by a SHA-256 hash of the sub-call request (path,
// category, anchor, checker name) and stored both in a bounded in-memory
// LRU and in a TTL'd file store under $XDG_CACHE_HOME/codereview.
// Expired entries are skipped on read and removed during cache-clear
// operations.
//
// The expert pool consults the cache before spending budget: since
// sub-calls are idempotent, a cached result is as good as a fresh one.
package cache
