// Package cache provides a generic TTL loading cache.
//
// It backs the player-profile and identity resolution caches: lookups
// against the profile service are slow and rate-limited, so results are
// held for a bounded time and the cache itself is bounded in size.
//
// The cache is constructed once at process start and passed to its users
// explicitly; there is no package-level instance.
package cache
