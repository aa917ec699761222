package rowset

import (
	"fmt"

	"github.com/leftmike/rowset/internal/chain"
)

// DebugDump walks the CSI in key order and renders one line per row: its encoded key,
// ghost/live status, insertion timestamp, and mutation count. Output format is stable because
// cmd/rowsetctl bench and the test suite both depend on it.
func (m *MemRowSet) DebugDump() []string {
	var lines []string
	it := m.csi.NewIterator(nil)
	for it.Next() {
		hdr := it.Value().(*rowHeader)
		count := 0
		hdr.chain.Walk(func(*chain.Node) bool {
			count++
			return true
		})
		status := "live"
		if isGhost(hdr) {
			status = "ghost"
		}
		lines = append(lines, fmt.Sprintf(
			"key=%x status=%s insertion_ts=%d mutations=%d row=%s",
			it.Key(), status, hdr.insertionTS, count, m.schema.DebugRow(hdr.body)))
	}
	return lines
}
