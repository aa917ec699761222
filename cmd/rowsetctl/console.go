package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/leftmike/rowset/internal/rowset"
	"github.com/leftmike/rowset/schema"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console for poking at a live MemRowSet and cache",
	Long: "console starts a line-editing shell exposing insert, mutate, delete, scan, cache-get, " +
		"and cache-put commands against a single in-process MemRowSet/cache pair.",
	RunE: consoleRun,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func consoleRun(cmd *cobra.Command, args []string) error {
	mrs, c, _ := newDemoMRS()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	var opID rowset.OpID
	fmt.Println("rowsetctl console: insert <id> <value> | mutate <id> <value> | delete <id> | " +
		"scan | cache-get <key> | cache-put <key> <value> | quit")

	for {
		input, err := line.Prompt("rowsetctl> ")
		if err != nil {
			return nil
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "insert":
			if len(fields) != 3 {
				fmt.Println("usage: insert <id> <value>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println(err)
				continue
			}
			opID++
			if err := mrs.Insert(rowset.Timestamp(opID), demoRow(id, fields[2]), opID); err != nil {
				fmt.Println(err)
			}
		case "mutate":
			if len(fields) != 3 {
				fmt.Println("usage: mutate <id> <value>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println(err)
				continue
			}
			opID++
			changes := rowset.ChangeList{{Index: 1, Value: schema.StringValue(fields[2])}}
			if _, err := mrs.MutateRow(rowset.Timestamp(opID), demoRow(id, ""), changes, opID, nil); err != nil {
				fmt.Println(err)
			}
		case "delete":
			if len(fields) != 2 {
				fmt.Println("usage: delete <id>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println(err)
				continue
			}
			opID++
			if err := mrs.DeleteRow(rowset.Timestamp(opID), demoRow(id, ""), opID, nil); err != nil {
				fmt.Println(err)
			}
		case "scan":
			it := mrs.NewIterator(mrs.Schema(), rowset.AllCommittedSnapshot{})
			it.Init(nil)
			var block rowset.RowBlock
			for {
				if err := it.NextBlock(&block); err != nil {
					break
				}
				if block.Len() == 0 {
					break
				}
				for i := 0; i < block.Len(); i++ {
					if block.Selected.Test(uint(i)) {
						fmt.Println(mrs.Schema().DebugRow(block.Rows[i]))
					}
				}
			}
			it.Close()
		case "cache-get":
			if len(fields) != 2 {
				fmt.Println("usage: cache-get <key>")
				continue
			}
			h := c.Lookup([]byte(fields[1]))
			if h == nil {
				fmt.Println("(not found)")
				continue
			}
			fmt.Println(h.Value())
			c.Release(h)
		case "cache-put":
			if len(fields) != 3 {
				fmt.Println("usage: cache-put <key> <value>")
				continue
			}
			h := c.Insert([]byte(fields[1]), fields[2], int64(len(fields[2])), nil)
			c.Release(h)
		default:
			fmt.Printf("unrecognized command: %s\n", fields[0])
		}
	}
}
