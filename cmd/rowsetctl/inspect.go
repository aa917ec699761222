package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/leftmike/rowset/config"
)

var (
	inspectConfigFile string

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Load an HCL config file and print the resolved parameters",
		RunE:  inspectRun,
	}
)

func init() {
	config.IntParam(new(int), "memrowset_throttle_mb", 0, config.Default)
	config.IntParam(new(int), "cache_capacity_mb", 64, config.Default)
	config.IntParam(new(int), "cache_shard_bits", 4, config.NoUpdate)
	config.IntParam(new(int), "arena_initial_kb", 1536, config.Default)
	config.IntParam(new(int), "arena_max_kb", 8192, config.Default)

	fs := inspectCmd.Flags()
	fs.StringVar(&inspectConfigFile, "config-file", "rowset.hcl", "file to load config from")
	rootCmd.AddCommand(inspectCmd)
}

func inspectRun(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(inspectConfigFile); err == nil {
		if err := config.Load(inspectConfigFile); err != nil {
			return fmt.Errorf("inspect: %s", err)
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"param", "value", "options"})
	for _, p := range config.AllParams() {
		table.Append([]string{p.Name, p.Val.String(), p.Options.String()})
	}
	table.Render()
	return nil
}
