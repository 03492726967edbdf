package cache

// instrumentedCache counts lookups of the embedded cache under a group
// label. Only Get is counted; Contains is a presence check, not a lookup.
type instrumentedCache struct {
	Cache
	group string
}

// newInstrumentedCache wraps inner and registers an entries gauge read from
// inner.Len() at scrape time.
func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{Cache: inner, group: group}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.Cache.Get(key)
	c.observe(ok)
	return val, ok
}

func (c *instrumentedCache) observe(hit bool) {
	counter := MissesTotal
	if hit {
		counter = HitsTotal
	}
	counter.WithLabelValues(c.group).Inc()
}

// Close unregisters the entries gauge before closing the backend.
func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.Cache.Close()
}
