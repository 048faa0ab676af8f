package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memkit/memkit/layout"
	"github.com/memkit/memkit/layout/ldscript"
)

var (
	renderOutput   string
	renderDataSize string
)

func init() {
	rootCmd.AddCommand(newRenderCmd())
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <layout.toml>",
		Short: "Render a linker script from a layout",
		Long: `The render command calculates a layout and emits a GNU ld linker script:
MEMORY regions, stack-top symbols, and NOLOAD section placements for
streams, the data section, and heaps.

Example:
  memkit render layout.toml -o memory.ld --data-size 1200`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args)
		},
	}
	cmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&renderDataSize, "data-size", "",
		"Measured size of the combined data/bss section (accepts K/M/hex forms)")
	return cmd
}

func runRender(args []string) error {
	path := args[0]

	printVerbose("Reading layout: %s\n", path)
	l, err := layout.ReadFile(path)
	if err != nil {
		return err
	}
	if renderDataSize != "" {
		size, err := layout.ParseBytes(renderDataSize)
		if err != nil {
			return err
		}
		if err := l.Calculate(size); err != nil {
			return err
		}
	}

	out := os.Stdout
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := ldscript.Render(out, l); err != nil {
		return fmt.Errorf("rendering linker script: %w", err)
	}
	if renderOutput != "" {
		printVerbose("Wrote %s\n", renderOutput)
	}
	return nil
}
