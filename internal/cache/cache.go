// Package cache stores resolved artifacts and metadata lookups behind a
// provider registry, with an in-process LRU and a Redis/Valkey backend.
package cache

// EvictCallback is called when the backend drops an entry on its own. Delete
// is never reported. The Redis provider reports size evictions only, with a
// nil value.
type EvictCallback func(key string, value []byte)

// Logger receives errors from backends whose operations cannot return them.
type Logger interface {
	Error(msg string, err error)
}

// Cache is a byte-valued key-value store with LRU eviction and a TTL.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string)

	// Contains reports whether key is present without refreshing its recency.
	Contains(key string) bool

	// Len returns the number of live entries.
	Len() int

	// Close releases backend connections.
	Close() error
}
