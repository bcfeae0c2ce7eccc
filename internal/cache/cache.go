// Package cache implements the gateway's response cache: a TTL-bounded,
// opaque byte store fronting the processor so identical requests can be
// answered without re-invoking ffmpeg.
package cache

import (
	"context"
	"time"
)

// Cache is the contract every response-cache backend implements.
type Cache interface {
	// Get returns the cached value for key, or ok=false if absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. A non-existent key is not an error.
	Delete(ctx context.Context, key string) error
}
