package rowset

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/leftmike/rowset/internal/anchor"
	"github.com/leftmike/rowset/schema"
)

// Timestamp is a logical, monotonically comparable commit timestamp.
type Timestamp int64

// OpID identifies a caller-supplied operation for anchoring purposes.
type OpID = anchor.OpID

// ChangeList is the set of column updates carried by an UPDATE mutation node. Index refers to a
// position in the schema the mutation was recorded against (the MRS's own schema, not any
// iterator's projection).
type ChangeList []schema.ColumnUpdate

// OpStats accumulates counters an external tablet aggregates across every MRS/rowset an
// operation touches.
type OpStats struct {
	MRSConsulted int
}

// MutateResult reports which MRS serviced a MutateRow call.
type MutateResult struct {
	MRSID string
}

// MVCCSnapshot decides whether a given commit timestamp is visible to a scan.
type MVCCSnapshot interface {
	IsCommitted(ts Timestamp) bool
}

// AllCommittedSnapshot is an MVCCSnapshot that treats every timestamp as visible, useful for
// tests and for the CLI's ad hoc scans.
type AllCommittedSnapshot struct{}

func (AllCommittedSnapshot) IsCommitted(Timestamp) bool { return true }

// WatermarkSnapshot treats every timestamp <= Watermark as committed.
type WatermarkSnapshot struct {
	Watermark Timestamp
}

func (s WatermarkSnapshot) IsCommitted(ts Timestamp) bool { return ts <= s.Watermark }

// EncodedKeyRange is one pushed-down key range: [Lower, Upper), either bound may be nil meaning
// unbounded.
type EncodedKeyRange struct {
	Lower []byte
	Upper []byte
}

// ScanSpec configures an Iterator's Init.
type ScanSpec struct {
	KeyRanges []EncodedKeyRange
}

// RowBlock is a reusable batch of decoded rows produced by NextBlock. Selected is a dense
// fixed-width bitset parallel to Rows: a clear bit means the row at that position is logically
// absent (deleted as of the scan's snapshot). Rows whose insertion is not visible under the
// snapshot are not placed in the block at all.
type RowBlock struct {
	Rows     []schema.Row
	Selected *bitset.BitSet
	n        int
}

// Reset clears the block, retaining its backing arrays for reuse, and marks every row selected.
func (b *RowBlock) Reset(capacity int) {
	if cap(b.Rows) < capacity {
		b.Rows = make([]schema.Row, capacity)
	} else {
		b.Rows = b.Rows[:capacity]
	}
	b.Selected = bitset.New(uint(capacity))
	for i := 0; i < capacity; i++ {
		b.Selected.Set(uint(i))
	}
	b.n = capacity
}

// resize truncates the block to n rows, called once NextBlock knows how many it actually
// produced.
func (b *RowBlock) resize(n int) {
	b.Rows = b.Rows[:n]
	b.n = n
}

// Len returns the number of rows currently in the block.
func (b *RowBlock) Len() int { return b.n }
