// Package cache implements the cache-aside read path for task lists.
//
// Values are stored JSON-encoded under string keys with a TTL. The Redis
// store is used in production; the in-process Memory store backs development
// setups without Redis and unit tests. Cache failures never fail a request:
// GetOrSet logs them and falls back to the fetch function.
package cache
