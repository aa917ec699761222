package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leftmike/rowset/flags"
)

var (
	rootCmd = &cobra.Command{
		Use:   "rowsetctl",
		Short: "Inspect and benchmark an in-memory row store",
		Long: "rowsetctl drives a MemRowSet and sharded cache directly, for benchmarking and " +
			"manual inspection, outside of any surrounding query engine.",
		PersistentPreRunE: rootPreRun,
		PersistentPostRun: rootPostRun,
	}

	logFile   = "rowsetctl.log"
	logLevel  = "info"
	logStderr = false
	logWriter io.WriteCloser

	throttleMB  int64 = 0
	cacheCapMB  int64 = 64
	arenaInitKB int64 = 1536
	arenaMaxKB  int64 = 8192

	flgs = flags.Default()
)

func init() {
	log.SetFormatter(&log.TextFormatter{DisableLevelTruncation: true})

	fs := rootCmd.PersistentFlags()
	fs.StringVar(&logFile, "log-file", logFile, "file to use for logging")
	fs.StringVar(&logLevel, "log-level", logLevel,
		"log level: trace, debug, info, warn, error, fatal, or panic")
	fs.BoolVarP(&logStderr, "log-stderr", "s", logStderr, "log to standard error")

	fs.Int64Var(&throttleMB, "memrowset-throttle-mb", throttleMB,
		"soft write throttle ceiling in MiB, 0 disables")
	fs.Int64Var(&cacheCapMB, "cache-capacity-mb", cacheCapMB,
		"total sharded cache capacity across all 16 shards, in MiB")
	fs.Int64Var(&arenaInitKB, "arena-initial-kb", arenaInitKB,
		"initial arena chunk size in KiB (not applied: the arena always starts at 1536)")
	fs.Int64Var(&arenaMaxKB, "arena-max-kb", arenaMaxKB,
		"maximum arena chunk size in KiB (not applied: the arena always caps at 8192)")
}

func Execute() error {
	return rootCmd.Execute()
}

func rootPreRun(cmd *cobra.Command, args []string) error {
	if !logStderr && logFile != "" {
		var err error
		logWriter, err = os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logWriter = nil
			return fmt.Errorf("rowsetctl: %s", err)
		}
		log.SetOutput(logWriter)
	}

	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("rowsetctl: %s", err)
	}
	log.SetLevel(ll)

	log.WithField("pid", os.Getpid()).Info("rowsetctl starting")
	return nil
}

func rootPostRun(cmd *cobra.Command, args []string) {
	log.WithField("pid", os.Getpid()).Info("rowsetctl done")
	if logWriter != nil {
		logWriter.Close()
	}
}
