package cache

import "bytes"

// entry is one cache entry: a refcounted, charge-accounted value, simultaneously a node in a
// chained hash bucket and (when refs == 1, i.e. held only by the cache and eligible for
// eviction) a node in the shard's intrusive LRU list.
type entry struct {
	key     []byte
	hash    uint32
	value   any
	charge  int64
	deleter func(key []byte, value any)
	refs    int32
	inCache bool // true while reachable from the shard's hash table

	hashNext *entry // next entry in this bucket's chain

	lruPrev, lruNext *entry // nil when not currently linked into the LRU list
}

func (e *entry) inLRU() bool { return e.lruPrev != nil }

// hashTable is the separately chained hash table backing one shard. Buckets are sized to
// the next power of two above the element count, resized (doubled) whenever count exceeds the
// bucket count, targeting an average chain length of at most 1.
type hashTable struct {
	buckets []*entry
	count   int
}

func newHashTable() *hashTable {
	return &hashTable{buckets: make([]*entry, 4)}
}

func (t *hashTable) find(key []byte, hash uint32) *entry {
	idx := hash & uint32(len(t.buckets)-1)
	for e := t.buckets[idx]; e != nil; e = e.hashNext {
		if e.hash == hash && bytes.Equal(e.key, key) {
			return e
		}
	}
	return nil
}

func (t *hashTable) insert(e *entry) {
	if t.count+1 > len(t.buckets) {
		t.resize(len(t.buckets) * 2)
	}
	idx := e.hash & uint32(len(t.buckets)-1)
	e.hashNext = t.buckets[idx]
	t.buckets[idx] = e
	t.count++
}

func (t *hashTable) remove(target *entry) {
	idx := target.hash & uint32(len(t.buckets)-1)
	ptr := &t.buckets[idx]
	for *ptr != nil {
		if *ptr == target {
			*ptr = target.hashNext
			target.hashNext = nil
			t.count--
			return
		}
		ptr = &(*ptr).hashNext
	}
}

// resize rehashes every entry into a newly sized bucket array. All entry pointers remain valid —
// only the bucket slice and each entry's hashNext link change.
func (t *hashTable) resize(newLen int) {
	newBuckets := make([]*entry, newLen)
	for _, head := range t.buckets {
		for e := head; e != nil; {
			next := e.hashNext
			idx := e.hash & uint32(newLen-1)
			e.hashNext = newBuckets[idx]
			newBuckets[idx] = e
			e = next
		}
	}
	t.buckets = newBuckets
}
