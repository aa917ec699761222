package arena_test

import (
	"sync"
	"testing"

	"github.com/leftmike/rowset/internal/arena"
	"github.com/leftmike/rowset/internal/memtracker"
)

func TestCopyBytesIndependentOfSource(t *testing.T) {
	tr := memtracker.NewRoot("t")
	a := arena.New(tr)

	src := []byte("hello")
	dst := a.CopyBytes(src)
	src[0] = 'H'

	if string(dst) != "hello" {
		t.Fatalf("arena copy was aliased: got %q", dst)
	}
}

func TestChunkGrowthConsumesTracker(t *testing.T) {
	tr := memtracker.NewRoot("t")
	a := arena.New(tr)

	a.Alloc(1024)
	if tr.Consumption() == 0 {
		t.Fatal("expected tracker consumption after first allocation")
	}

	before := tr.Consumption()
	// Force chunk growth with an allocation much larger than the initial chunk.
	a.Alloc(4 * 1024 * 1024)
	if tr.Consumption() <= before {
		t.Fatal("expected tracker consumption to grow after installing a new chunk")
	}
}

func TestCloseReleasesAllConsumption(t *testing.T) {
	tr := memtracker.NewRoot("t")
	a := arena.New(tr)

	a.Alloc(10)
	a.Alloc(10 * 1024 * 1024)
	if tr.Consumption() == 0 {
		t.Fatal("expected non-zero consumption before close")
	}
	a.Close()
	if got := tr.Consumption(); got != 0 {
		t.Errorf("tracker.Consumption() after Close = %d, want 0", got)
	}
}

func TestConcurrentAllocDoesNotRace(t *testing.T) {
	tr := memtracker.NewRoot("t")
	a := arena.New(tr)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := a.CopyBytes([]byte("row-payload"))
				if string(b) != "row-payload" {
					t.Errorf("corrupted allocation: %q", b)
				}
			}
		}()
	}
	wg.Wait()
}
