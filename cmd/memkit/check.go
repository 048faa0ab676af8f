package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memkit/memkit/layout"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <layout.toml>",
		Short: "Validate a layout file",
		Long: `The check command parses a layout file, cross-checks its declarations,
and runs the stage-one estimate. Violations are reported with the dotted
path of the offending declaration.

Example:
  memkit check layout.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	path := args[0]

	printVerbose("Reading layout: %s\n", path)
	l, err := layout.ReadFile(path)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	printInfo("%s: OK\n", path)
	printInfo("  RAM regions: %d\n", len(l.RAM))
	printInfo("  flash regions: %d\n", len(l.Flash))
	printInfo("  stacks: %d, streams: %d, heaps: %d\n",
		len(l.Stacks), len(l.Streams), len(l.Heaps))
	return nil
}
