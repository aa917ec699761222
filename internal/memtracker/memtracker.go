// Package memtracker implements the hierarchical memory-tracker collaborator named throughout
// the spec: every allocation made by an arena or cache shard is consumed against a Tracker, and
// every release is credited back, with the accounting propagating up to every ancestor.
package memtracker

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	uberatomic "go.uber.org/atomic"
)

// Tracker is a node in a tree of memory consumers. Consume and Release affect this node and
// every ancestor up to the root, so Consumption reports the outstanding bytes consumed through
// this node or any of its descendants.
type Tracker struct {
	name     string
	parent   *Tracker
	consumed uberatomic.Int64
	gauge    *metrics.Gauge
}

// NewRoot creates a root tracker with no parent, named per the "sharded_lru_cache" /
// "MemRowSet-<id>" conventions spec.md §6 assigns to the cache and the MRS respectively.
func NewRoot(name string) *Tracker {
	return newTracker(name, nil)
}

// NewChild creates a tracker whose consumption also debits t and every tracker above it. Name
// matches the "<parent-id>-MemRowSet-<id>" convention spec.md §6 describes.
func (t *Tracker) NewChild(name string) *Tracker {
	return newTracker(name, t)
}

func newTracker(name string, parent *Tracker) *Tracker {
	tr := &Tracker{name: name, parent: parent}
	tr.gauge = metrics.GetOrCreateGauge(
		fmt.Sprintf(`rowset_memtracker_consumed_bytes{tracker=%q}`, name),
		func() float64 { return float64(tr.Consumption()) },
	)
	return tr
}

// Consume charges n bytes against t and every ancestor. n must be >= 0.
func (t *Tracker) Consume(n int64) {
	for cur := t; cur != nil; cur = cur.parent {
		cur.consumed.Add(n)
	}
}

// Release credits n bytes back to t and every ancestor. n must be >= 0 and no larger than the
// cumulative Consume calls not yet released.
func (t *Tracker) Release(n int64) {
	for cur := t; cur != nil; cur = cur.parent {
		cur.consumed.Sub(n)
	}
}

// Consumption reports t's current outstanding bytes. These include every descendant's, since
// each descendant's Consume and Release also apply to t.
func (t *Tracker) Consumption() int64 {
	return t.consumed.Load()
}

func (t *Tracker) ID() string { return t.name }

// Root walks up to the root of the tree this tracker belongs to.
func (t *Tracker) Root() *Tracker {
	cur := t
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}
