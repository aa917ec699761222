package cache

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/leftmike/rowset/internal/memtracker"
)

const (
	shardBits  = 4
	numShards  = 1 << shardBits
	shardShift = 32 - shardBits
)

// Handle is a reference to one cache entry. It stays valid — its Value never changes underfoot
// — until Release is called, regardless of concurrent eviction pressure elsewhere in the cache.
type Handle struct {
	shard uint32
	e     *entry
}

// Value returns the handle's cached value.
func (h *Handle) Value() any { return h.e.value }

// Cache is the sharded, hash-dispatching façade: 16 independently locked shards, each bounded to
// roughly total capacity / 16 bytes, hashed with xxhash.Sum64 truncated to 32 bits.
//
// Grounded on spec.md §4.9 directly; xxhash is grounded on ShubhamNegi4-DaemonDB's dependency on
// github.com/cespare/xxhash/v2 (the teacher's own stack has no 64-bit hash function).
type Cache struct {
	shards [numShards]*shard

	idMu      sync.Mutex
	idCounter uint64
}

// New creates a Cache with the given total capacity in bytes, split evenly (rounding up) across
// 16 shards, consuming from a child of tracker per shard.
func New(totalCapacity int64, tracker *memtracker.Tracker) *Cache {
	perShard := (totalCapacity + numShards - 1) / numShards
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = newShard(i, perShard, tracker.NewChild(shardTrackerName(tracker.ID(), i)))
	}
	return c
}

func shardTrackerName(parent string, i int) string {
	return fmt.Sprintf("%s-cache-shard-%d", parent, i)
}

func hashKey(key []byte) uint32 {
	return uint32(xxhash.Sum64(key))
}

func shardIndex(hash uint32) uint32 {
	return hash >> shardShift
}

// Insert installs value under key with the given charge against capacity, returning a handle
// with two references already accounted for (one held by the cache, one returned here).
// Over-capacity inserts evict but never fail: Insert always returns a handle.
func (c *Cache) Insert(key []byte, value any, charge int64, deleter func([]byte, any)) *Handle {
	hash := hashKey(key)
	idx := shardIndex(hash)
	e := c.shards[idx].insert(key, hash, value, charge, deleter)
	return &Handle{shard: idx, e: e}
}

// Lookup finds key, returning nil if absent. A non-nil result must eventually be passed to
// Release.
func (c *Cache) Lookup(key []byte) *Handle {
	hash := hashKey(key)
	idx := shardIndex(hash)
	e := c.shards[idx].lookup(key, hash)
	if e == nil {
		return nil
	}
	return &Handle{shard: idx, e: e}
}

// Release drops h's reference, recovering the owning shard from the handle itself.
func (c *Cache) Release(h *Handle) {
	c.shards[h.shard].release(h.e)
}

// Erase removes key from the cache. Any handle already held by a caller remains valid until
// released; the final free happens then.
func (c *Cache) Erase(key []byte) {
	hash := hashKey(key)
	idx := shardIndex(hash)
	c.shards[idx].erase(key, hash)
}

// NewID returns a process-unique, monotonically increasing id, guarded by its own mutex
// independent of any shard — used by callers (e.g. file-block cache keys) that need a stable
// numeric identity alongside the cache.
func (c *Cache) NewID() uint64 {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	c.idCounter++
	return c.idCounter
}

// Occupancy reports the usage and capacity of every shard, in shard-index order, for
// cmd/rowsetctl bench.
func (c *Cache) Occupancy() (usage, capacity [numShards]int64) {
	for i, s := range c.shards {
		usage[i], capacity[i] = s.occupancy()
	}
	return
}
