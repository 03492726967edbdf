package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/titulkysubs/titulkysubs/internal/config"
)

// ProviderConfig holds the configuration needed to create a cache instance.
type ProviderConfig struct {
	// Size is the maximum number of entries.
	Size int

	// TTL is the time-to-live for cache entries.
	TTL time.Duration

	// OnEvict is called when an entry is evicted to stay within Size.
	OnEvict EvictCallback

	// Logger receives backend errors. If nil, errors are dropped.
	Logger Logger

	// KeyPrefix namespaces keys in shared backends. Defaults to "titulky:".
	KeyPrefix string

	// RedisAddress is the Redis/Valkey server address (e.g., "localhost:6379").
	RedisAddress string

	// RedisPassword is the password for the Redis/Valkey server.
	RedisPassword string

	// RedisDB is the Redis/Valkey database number.
	RedisDB int

	// Group labels the subtitle_cache_* metrics. When non-empty the cache is
	// wrapped with metric instrumentation.
	Group string
}

// Provider is a constructor function that creates a Cache from config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register registers a cache provider under the given name.
// It panics if the name is already registered or the provider is nil.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New creates a Cache using the named provider. When cfg.Group is set, hits,
// misses and evictions are counted under that label and the entry count is
// read from Len() at scrape time.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	original := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if original != nil {
			original(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}

	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders returns a sorted list of registered provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFromConfig creates the cache selected by the application config. The
// group is used both as metric label and as part of the key prefix, so several
// caches can share one Redis database.
func NewFromConfig(cfg *config.Config, group string) (Cache, error) {
	provider := cfg.Cache.Provider
	if provider == "" {
		provider = "memory"
	}
	size := cfg.Cache.Size
	if size <= 0 {
		size = 2000
	}
	return New(provider, ProviderConfig{
		Size:          size,
		TTL:           config.ParseDuration("cache.ttl", cfg.Cache.TTL, 24*time.Hour),
		Logger:        NewZerologLogger(config.GetLogger().With().Str("component", "cache").Str("cache", group).Logger()),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		KeyPrefix:     defaultKeyPrefix + group + ":",
		Group:         group,
	})
}
