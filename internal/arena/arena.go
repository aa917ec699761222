// Package arena implements the bump-allocated, memory-tracked region spec.md §4.1 describes:
// row bodies and mutation nodes are copied into it once and never individually freed; the whole
// region is released back to its memory tracker only when the owning MemRowSet is torn down.
//
// Grounded on the teacher's engine.PageCache/Page (a mutex-guarded struct wrapping raw []byte
// storage), generalized from fixed-size pages to variable-length bump allocation.
package arena

import (
	"sync"

	"github.com/leftmike/rowset/internal/memtracker"
)

const (
	initialChunkSize = 3 * 1024 * 1024 / 2 // 1.5 MiB
	maxChunkSize      = 8 * 1024 * 1024     // 8 MiB
)

// Arena is a monotonically growing, thread-safe allocator. Every Alloc either bump-allocates
// from the current chunk or installs a new, larger chunk under mutex.
type Arena struct {
	tracker *memtracker.Tracker

	mu         sync.Mutex
	chunks     [][]byte
	cur        []byte // the active chunk
	used       int    // bytes used within cur
	nextChunk  int    // size of the next chunk to install, doubling up to maxChunkSize
	totalBytes int64  // sum of every installed chunk's capacity
}

// New creates an empty Arena that consumes from tracker as chunks are installed.
func New(tracker *memtracker.Tracker) *Arena {
	return &Arena{
		tracker:   tracker,
		nextChunk: initialChunkSize,
	}
}

// Alloc returns a zeroed, n-byte slice backed by the arena. The slice remains valid for the
// lifetime of the arena; there is no corresponding Free.
func (a *Arena) Alloc(n int) []byte {
	if n == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil || a.used+n > len(a.cur) {
		a.installChunkLocked(n)
	}
	b := a.cur[a.used : a.used+n : a.used+n]
	a.used += n
	return b
}

// CopyBytes allocates len(b) bytes in the arena and copies b into them, returning the arena
// copy. This is how row bodies and change-list payloads are relocated off the caller's buffers.
func (a *Arena) CopyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	dst := a.Alloc(len(b))
	copy(dst, b)
	return dst
}

func (a *Arena) installChunkLocked(need int) {
	size := a.nextChunk
	if size < need {
		// A single allocation larger than the configured chunk size still gets one chunk of
		// exactly its own size, matching the teacher's tolerance for oversized individual pages.
		size = need
	}
	chunk := make([]byte, size)
	a.chunks = append(a.chunks, chunk)
	a.cur = chunk
	a.used = 0
	a.totalBytes += int64(size)
	a.tracker.Consume(int64(size))

	if a.nextChunk < maxChunkSize {
		a.nextChunk *= 2
		if a.nextChunk > maxChunkSize {
			a.nextChunk = maxChunkSize
		}
	}
}

// Stats reports the arena's chunk count and byte accounting, consumed by MemRowSet.DebugDump and
// MemoryFootprint.
type Stats struct {
	Chunks     int
	Allocated  int64 // sum of installed chunk capacities
	UsedInLast int   // bytes used in the current (last installed) chunk
}

func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		Chunks:     len(a.chunks),
		Allocated:  a.totalBytes,
		UsedInLast: a.used,
	}
}

// Close releases every chunk's bytes back to the memory tracker. After Close, the arena must
// not be used again; every row body, mutation node, and iterator sourced from it becomes
// invalid, matching spec.md §3's "Lifecycle" contract.
func (a *Arena) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.totalBytes > 0 {
		a.tracker.Release(a.totalBytes)
	}
	a.chunks = nil
	a.cur = nil
	a.totalBytes = 0
}
