// Package volume assembles the region map and provides read-through,
// decrypt-on-demand access to the decrypted volume (spec.md §4.G).
package volume

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the default sector-cache capacity spec.md §4.G names.
const DefaultCacheSize = 64

// sectorCache is a small LRU of recently decrypted sectors keyed by their
// logical byte offset, backed by hashicorp/golang-lru rather than a
// hand-rolled ring buffer. It is purely an optimisation — spec.md §8
// requires identical read results whether or not it is enabled, which is
// why VirtualVolume can run with size 0 to disable it entirely.
type sectorCache struct {
	cache *lru.Cache
}

// newSectorCache builds a cache of the given capacity. size <= 0 disables
// caching: Get always misses and Put is a no-op.
func newSectorCache(size int) (*sectorCache, error) {
	if size <= 0 {
		return &sectorCache{}, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &sectorCache{cache: c}, nil
}

func (c *sectorCache) Get(offset uint64) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(offset)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *sectorCache) Put(offset uint64, sector []byte) {
	if c.cache == nil {
		return
	}
	c.cache.Add(offset, sector)
}
