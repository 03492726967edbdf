package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache keeps entries in an in-process expirable LRU. OnEvict sees
// capacity and expiry drops only; Delete is the caller's own decision and is
// not reported, matching the Redis provider.
type memoryCache struct {
	entries  *lru.LRU[string, []byte]
	deleting sync.Map
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	m := &memoryCache{}
	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		report := cfg.OnEvict
		onEvict = func(key string, value []byte) {
			if _, deleting := m.deleting.Load(key); deleting {
				return
			}
			report(key, value)
		}
	}
	m.entries = lru.NewLRU[string, []byte](cfg.Size, onEvict, cfg.TTL)
	return m, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	return m.entries.Get(key)
}

func (m *memoryCache) Set(key string, value []byte) {
	m.entries.Add(key, value)
}

func (m *memoryCache) Delete(key string) {
	m.deleting.Store(key, struct{}{})
	defer m.deleting.Delete(key)
	m.entries.Remove(key)
}

func (m *memoryCache) Contains(key string) bool {
	return m.entries.Contains(key)
}

func (m *memoryCache) Len() int {
	return m.entries.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
