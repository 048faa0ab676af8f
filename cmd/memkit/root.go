package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memkit/memkit/layout"
	"github.com/memkit/memkit/layout/heaptrace"
)

var (
	// Global flags
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "memkit",
	Short: "Plan MCU memory layouts: stacks, streams, data, and heap pools",
	Long: `memkit plans the RAM layout of a microcontroller firmware image from a
declarative layout.toml: it places stacks, trace streams, the data section,
and heaps inside their regions, sizes heap pools, renders linker scripts,
and suggests fragmentation-minimized pool layouts from allocation traces.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger, err := zap.NewDevelopment()
			if err == nil {
				layout.SetLogger(logger)
				heaptrace.SetLogger(logger)
			}
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}
