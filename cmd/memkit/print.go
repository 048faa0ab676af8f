package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memkit/memkit/layout"
)

var printDataSize string

func init() {
	rootCmd.AddCommand(newPrintCmd())
}

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print <layout.toml>",
		Short: "Print the resolved memory map",
		Long: `The print command calculates a layout and writes the resolved map back
as canonical TOML, computed origins and sizes included.

Without --data-size the stage-one estimate is printed: the data section
absorbs every byte not claimed by a fixed or proportional consumer. With
--data-size the final map for a measured binary is printed instead.

Example:
  memkit print layout.toml
  memkit print layout.toml --data-size 0x4B0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(args)
		},
	}
	cmd.Flags().StringVar(&printDataSize, "data-size", "",
		"Measured size of the combined data/bss section (accepts K/M/hex forms)")
	return cmd
}

func runPrint(args []string) error {
	path := args[0]

	printVerbose("Reading layout: %s\n", path)
	l, err := layout.ReadFile(path)
	if err != nil {
		return err
	}
	if printDataSize != "" {
		size, err := layout.ParseBytes(printDataSize)
		if err != nil {
			return err
		}
		printVerbose("Calculating with data size %s\n", size)
		if err := l.Calculate(size); err != nil {
			return err
		}
	}

	data, err := l.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	if err != nil {
		return fmt.Errorf("writing map: %w", err)
	}
	return nil
}
