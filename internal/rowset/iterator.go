package rowset

import (
	"bytes"

	"github.com/leftmike/rowset/flags"
	"github.com/leftmike/rowset/internal/chain"
	"github.com/leftmike/rowset/internal/csi"
	"github.com/leftmike/rowset/schema"
)

type iterState int

const (
	stateUninitialized iterState = iota
	stateScanning
	stateFinished
)

// Iterator performs a snapshot scan over a MemRowSet with projection, MVCC filtering, mutation
// replay, and pushed-down key-range bounds. Construction acquires a reference on the owning MRS,
// keeping its arena alive for the iterator's lifetime; Close releases it.
type Iterator struct {
	mrs        *MemRowSet
	projection *schema.Schema
	snapshot   MVCCSnapshot
	projMap    []int // projMap[destIdx] = source column index

	csiIter *csi.Iterator
	state   iterState

	upperBound []byte // exclusive; nil means unbounded
}

// NewIterator binds an Iterator to m, projecting rows onto projection's columns and visible
// under snapshot. The returned Iterator must have Init called before NextBlock.
func (m *MemRowSet) NewIterator(projection *schema.Schema, snapshot MVCCSnapshot) *Iterator {
	m.acquire()
	projMap := make([]int, projection.NumColumns())
	for i, id := range projection.ColumnIDs() {
		projMap[i] = m.schema.IndexOf(id)
	}
	return &Iterator{
		mrs:        m,
		projection: projection,
		snapshot:   snapshot,
		projMap:    projMap,
	}
}

// Close releases the Iterator's hold on its MemRowSet. Must be called exactly once.
func (it *Iterator) Close() {
	it.mrs.release()
}

// Init resolves spec's pushed key ranges and positions the scan at the tightest lower bound.
func (it *Iterator) Init(spec *ScanSpec) {
	if !it.mrs.flags.GetFlag(flags.PushdownKeyRange) {
		spec = nil
	}

	var lower, upper []byte
	haveLower, haveUpper := false, false

	if spec != nil {
		for _, r := range spec.KeyRanges {
			if r.Lower != nil && (!haveLower || bytes.Compare(r.Lower, lower) > 0) {
				lower, haveLower = r.Lower, true
			}
			if r.Upper != nil && (!haveUpper || bytes.Compare(r.Upper, upper) < 0) {
				upper, haveUpper = r.Upper, true
			}
		}
	}
	if haveUpper {
		it.upperBound = upper
	}
	if haveLower && haveUpper && bytes.Compare(lower, upper) >= 0 {
		it.state = stateFinished
		return
	}

	it.csiIter = it.mrs.csi.NewIterator(lower)
	if !it.csiIter.Next() {
		it.state = stateFinished
		return
	}
	it.state = stateScanning
}

// NextBlock fills block with up to cap(block.Rows) projected, MVCC-filtered, mutation-replayed
// rows, advancing the scan. Returns ErrNotFound once the scan is exhausted.
func (it *Iterator) NextBlock(block *RowBlock) error {
	if it.state != stateScanning {
		block.resize(0)
		if it.state == stateFinished {
			return ErrNotFound
		}
		return nil
	}

	capacity := cap(block.Rows)
	if capacity == 0 {
		capacity = 64
	}
	block.Reset(capacity)

	n := 0
	for n < capacity {
		key := it.csiIter.Key()
		if it.upperBound != nil && bytes.Compare(key, it.upperBound) >= 0 {
			it.state = stateFinished
			break
		}

		hdr := it.csiIter.Value().(*rowHeader)
		if !it.snapshot.IsCommitted(hdr.insertionTS) {
			// Checked after the upper-bound stop rather than before, and skipped outright rather
			// than emitted with a cleared selection bit: ascending key order means stopping at
			// the first key >= upperBound is correct regardless of commit visibility, and a
			// not-yet-committed row is invisible either way, so the visible row set is identical
			// to doing the commit check first. Deliberate reordering, not an oversight.
			if !it.csiIter.Next() {
				it.state = stateFinished
				break
			}
			continue
		}

		row, selected := it.projectAndReplay(hdr)
		block.Rows[n] = row
		if !selected {
			block.Selected.Clear(uint(n))
		}
		n++

		if !it.csiIter.Next() {
			it.state = stateFinished
			break
		}
	}

	block.resize(n)
	if n == 0 && it.state == stateFinished {
		return ErrNotFound
	}
	return nil
}

// projectAndReplay builds the destination row from hdr's body, applying every mutation in chain
// order whose timestamp is visible under the iterator's snapshot.
func (it *Iterator) projectAndReplay(hdr *rowHeader) (schema.Row, bool) {
	body := hdr.body
	selected := true

	hdr.chain.Walk(func(n *chain.Node) bool {
		if !it.snapshot.IsCommitted(Timestamp(n.Timestamp)) {
			return true
		}
		switch n.Kind {
		case chain.Update:
			changes := n.Payload.(ChangeList)
			newBody := append(schema.Row(nil), body...)
			for _, upd := range changes {
				if upd.Index < len(newBody) {
					newBody[upd.Index] = upd.Value
				}
			}
			body = newBody
		case chain.Delete:
			selected = false
		case chain.Reinsert:
			body = n.Payload.(schema.Row)
			selected = true
		}
		return true
	})

	if !it.mrs.flags.GetFlag(flags.PushdownProjection) {
		return append(schema.Row(nil), body...), selected
	}

	dest := make(schema.Row, len(it.projMap))
	for destIdx, srcIdx := range it.projMap {
		if srcIdx >= 0 && srcIdx < len(body) {
			dest[destIdx] = body[srcIdx]
		}
	}
	return dest, selected
}
