package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memkit/memkit/layout"
	"github.com/memkit/memkit/layout/heaptrace"
)

var (
	heapSize   string
	heapPools  int
	heapAllocs []string
)

func init() {
	heapCmd := &cobra.Command{
		Use:   "heap",
		Short: "Size and optimize heap pool layouts",
	}
	heapCmd.AddCommand(newHeapBootstrapCmd())
	heapCmd.AddCommand(newHeapSuggestCmd())
	rootCmd.AddCommand(heapCmd)
}

func newHeapBootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap --size <bytes> --pools <n>",
		Short: "Synthesize a pool layout with no trace data",
		Long: `The bootstrap command generates a starting pool layout before any
allocation history exists: block sizes spaced along a power curve between
the word size and a twentieth of the budget, capacities weighted toward
the mid-sized pools.

Example:
  memkit heap bootstrap --size 4K --pools 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeapBootstrap()
		},
	}
	cmd.Flags().StringVar(&heapSize, "size", "", "Heap size budget (accepts K/M/hex forms)")
	cmd.Flags().IntVar(&heapPools, "pools", 4, "Number of pools to generate")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

func newHeapSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest --size <bytes> --pools <n> --alloc <size>:<peak>...",
		Short: "Suggest a fragmentation-minimized pool layout from a trace",
		Long: `The suggest command folds observed allocation peaks into a histogram,
reports the heap usage, and prints the pool layout that minimizes
fragmentation within the size budget.

Each --alloc flag records one allocation size with its peak concurrency.

Example:
  memkit heap suggest --size 1K --pools 2 --alloc 4:10 --alloc 8:5 --alloc 32:1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeapSuggest()
		},
	}
	cmd.Flags().StringVar(&heapSize, "size", "", "Heap size budget (accepts K/M/hex forms)")
	cmd.Flags().IntVar(&heapPools, "pools", 4, "Maximum number of pools")
	cmd.Flags().StringArrayVar(&heapAllocs, "alloc", nil,
		"Observed allocation as <size>:<peak concurrency> (repeatable)")
	_ = cmd.MarkFlagRequired("size")
	_ = cmd.MarkFlagRequired("alloc")
	return cmd
}

func runHeapBootstrap() error {
	size, err := layout.ParseBytes(heapSize)
	if err != nil {
		return err
	}
	pools, err := heaptrace.Bootstrap(size, heapPools)
	if err != nil {
		return err
	}
	return heaptrace.WriteSuggestion(os.Stdout, pools, 0, size)
}

func runHeapSuggest() error {
	size, err := layout.ParseBytes(heapSize)
	if err != nil {
		return err
	}
	h := heaptrace.New(size)
	for _, alloc := range heapAllocs {
		if err := recordAlloc(h, alloc); err != nil {
			return err
		}
	}

	if err := heaptrace.WriteReport(os.Stdout, h, size); err != nil {
		return err
	}
	fmt.Println()
	pools, frag, err := heaptrace.Optimize(h, size, heapPools)
	if err != nil {
		return err
	}
	return heaptrace.WriteSuggestion(os.Stdout, pools, frag, size)
}

// recordAlloc folds one "<size>:<peak>" flag value into the histogram.
func recordAlloc(h *heaptrace.Histogram, alloc string) error {
	sizeStr, peakStr, ok := strings.Cut(alloc, ":")
	if !ok {
		return fmt.Errorf("invalid --alloc %q: want <size>:<peak>", alloc)
	}
	size, err := layout.ParseBytes(sizeStr)
	if err != nil {
		return fmt.Errorf("invalid --alloc %q: %w", alloc, err)
	}
	peak, err := strconv.Atoi(peakStr)
	if err != nil || peak < 1 {
		return fmt.Errorf("invalid --alloc %q: peak must be a positive integer", alloc)
	}
	for i := 0; i < peak; i++ {
		if err := h.RecordAlloc(size); err != nil {
			return err
		}
	}
	return nil
}
