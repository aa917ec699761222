package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/leftmike/rowset/internal/rowset"
)

var (
	benchRows   int
	benchDump   bool

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic insert/scan workload against an in-memory row store",
		RunE:  benchRun,
	}
)

func init() {
	fs := benchCmd.Flags()
	fs.IntVar(&benchRows, "rows", 10000, "number of rows to insert")
	fs.BoolVar(&benchDump, "dump", false, "print DebugDump() of the resulting row store")
	rootCmd.AddCommand(benchCmd)
}

func benchRun(cmd *cobra.Command, args []string) error {
	mrs, c, registry := newDemoMRS()

	var opID rowset.OpID
	start := time.Now()
	for i := 0; i < benchRows; i++ {
		opID++
		row := demoRow(int64(i), "v"+strconv.Itoa(i))
		if err := mrs.Insert(rowset.Timestamp(i+1), row, opID); err != nil {
			return fmt.Errorf("bench: insert %d: %w", i, err)
		}
		h := c.Insert([]byte(strconv.Itoa(i)), row, int64(len(row)*16), nil)
		c.Release(h)
	}
	insertElapsed := time.Since(start)

	it := mrs.NewIterator(mrs.Schema(), rowset.AllCommittedSnapshot{})
	defer it.Close()
	it.Init(nil)

	start = time.Now()
	var scanned int
	var block rowset.RowBlock
	for {
		if err := it.NextBlock(&block); err != nil {
			break
		}
		if block.Len() == 0 {
			break
		}
		scanned += block.Len()
	}
	scanElapsed := time.Since(start)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"metric", "value"})
	table.Append([]string{"rows inserted", strconv.Itoa(benchRows)})
	table.Append([]string{"insert elapsed", insertElapsed.String()})
	table.Append([]string{"rows scanned", strconv.Itoa(scanned)})
	table.Append([]string{"scan elapsed", scanElapsed.String()})
	table.Append([]string{"mrs footprint bytes", strconv.FormatInt(mrs.MemoryFootprint(), 10)})
	if min, ok := registry.GlobalMinimum(); ok {
		table.Append([]string{"anchor global minimum", strconv.FormatUint(uint64(min), 10)})
	}
	table.Render()

	usage, capacity := c.Occupancy()
	shardTable := tablewriter.NewWriter(os.Stdout)
	shardTable.SetHeader([]string{"shard", "usage bytes", "capacity bytes"})
	for i := range usage {
		shardTable.Append([]string{
			strconv.Itoa(i),
			strconv.FormatInt(usage[i], 10),
			strconv.FormatInt(capacity[i], 10),
		})
	}
	shardTable.Render()

	if benchDump {
		for _, line := range mrs.DebugDump() {
			fmt.Println(line)
		}
	}
	return nil
}
