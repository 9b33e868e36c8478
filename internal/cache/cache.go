package cache

import (
	"context"
	"time"
)

// FetchFunc produces a fresh payload for a cache key. It is invoked
// only on miss or expiry.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Cache is a read-through TTL cache over opaque payloads. Get returns
// the cached payload while its age is below ttl; otherwise it invokes
// fetch, stores the result, and returns it. A fetch failure is never
// cached, so the next call retries immediately.
type Cache interface {
	Get(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error)
}
