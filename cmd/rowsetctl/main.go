// Command rowsetctl drives and inspects an in-memory row store and sharded cache directly,
// without a surrounding SQL engine: a synthetic write/scan benchmark, a config inspector, and an
// interactive console for poking at a live MemRowSet/Cache pair.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
