// Package cache provides byte-level caching for computed layouts and
// consistency reports.
//
// Backends:
//   - [NullCache]: never stores anything (caching disabled)
//   - [MemoryCache]: bounded in-process map, evicts everything at capacity
//   - [FileCache]: one JSON file per entry under a directory (CLI)
//   - [RedisCache]: shared cache for multi-instance servers
//
// Keys are produced by a [Keyer]. A layout key combines a graph version
// with the focus person, the settings and the sorted collapsed set, so
// identical requests on an unchanged graph always hit.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	LayoutTTL = 24 * time.Hour
	CheckTTL  = 24 * time.Hour
)

// Cache stores opaque values by key. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
