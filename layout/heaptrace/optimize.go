package heaptrace

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/memkit/memkit/layout"
)

// The weighting curve for distributing leftover capacity is a bell over the
// pool index: mid-sized pools get the largest share, the extremes get a
// quarter of it.
const ratioSlope = 4.0

// Power controlling how bootstrap block sizes are spaced between the word
// size and a twentieth of the budget.
const bootstrapCurve = 2.75

// span is one (block, count) bucket during optimization.
type span struct {
	block layout.Bytes
	count uint32
}

// Optimize computes a fragmentation-minimized pool layout from an observed
// allocation histogram. It groups the histogram's distinct sizes into at
// most pools contiguous ranges; every allocation in a range is serviced by
// a block of the range's maximum size, and the minimized fragmentation is
// the total bytes wasted by that rounding. The resulting pools are then
// extended to consume the whole size budget. Returns the pools with fixed
// counts and the fragmentation total.
func Optimize(h *Histogram, size layout.Bytes, pools int) ([]layout.Pool, layout.Bytes, error) {
	if pools < 1 {
		return nil, 0, fmt.Errorf("%w: %d", ErrPoolCount, pools)
	}
	if h.Len() == 0 {
		return nil, 0, ErrEmptyTrace
	}
	input := coalesce(h.Entries())
	var used layout.Bytes
	for _, s := range input {
		used += s.block * layout.Bytes(s.count)
	}
	if used > size {
		return nil, 0, fmt.Errorf("%w (%d < %d)", ErrOverBudget, size, used)
	}
	if pools > len(input) {
		pools = len(input)
	}
	free := size - used
	best, frag := minimize(input, pools, free)
	if frag > free {
		return nil, 0, fmt.Errorf("%w: no %d-pool grouping fits in %s", ErrOverBudget, pools, size)
	}
	extend(best, size)
	Logger().Debug("optimizer finished",
		zap.Int("sizes", len(input)),
		zap.Int("pools", pools),
		zap.Uint32("fragmentation", uint32(frag)))
	return toPools(best), frag, nil
}

// Bootstrap synthesizes a pool layout with no trace data, used before any
// allocation history exists. Block sizes are spaced along a power curve
// between the word size and size/20, strictly ascending after alignment,
// and capacities follow the same weighting and rounding scheme as Optimize.
func Bootstrap(size layout.Bytes, pools int) ([]layout.Pool, error) {
	if pools < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPoolCount, pools)
	}
	if size < layout.Bytes(pools)*layout.WordSize {
		return nil, fmt.Errorf("%w (%d < %d)", ErrOverBudget, size, pools*layout.WordSize)
	}
	if pools == 1 {
		return toPools([]span{{block: layout.WordSize, count: uint32(size / layout.WordSize)}}), nil
	}
	blockMin := layout.Bytes(layout.WordSize)
	blockMax := size / 20
	if blockMax < blockMin {
		blockMax = blockMin
	}
	out := make([]span, 0, pools)
	var used, prev layout.Bytes
	for i, ratio := range ratios(pools) {
		curve := math.Pow(float64(i)/float64(pools-1), bootstrapCurve)
		block := blockMin + layout.Bytes(math.Round(curve*float64(blockMax-blockMin)))
		block = layout.AlignWord(block)
		if block <= prev {
			block = prev + layout.WordSize
		}
		count := addCapacity(block, size-used, ratio, float64(size))
		used += block * layout.Bytes(count)
		prev = block
		out = append(out, span{block: block, count: count})
	}
	topOff(out, &used, size)
	return toPools(out), nil
}

// coalesce rounds observed sizes up to the word grid and merges duplicates,
// producing the optimizer's ascending (size, peak) input.
func coalesce(entries []Entry) []span {
	out := make([]span, 0, len(entries))
	for _, e := range entries {
		size := layout.AlignWord(e.Size)
		if n := len(out); n > 0 && out[n-1].block == size {
			out[n-1].count += e.Peak
		} else {
			out = append(out, span{block: size, count: e.Peak})
		}
	}
	return out
}

// minimize partitions input into exactly k contiguous groups minimizing the
// total fragmentation, by branch-and-bound: a boundary choice is abandoned
// as soon as its partial fragmentation reaches the best complete solution
// found so far. Earliest boundaries win ties, keeping results deterministic.
// Partitions wasting more than cutoff bytes are infeasible (the merged pools
// would not fit the budget); when every partition is infeasible the returned
// fragmentation exceeds cutoff.
func minimize(input []span, k int, cutoff layout.Bytes) ([]span, layout.Bytes) {
	path := make([]span, k)
	best := make([]span, k)
	bestFrag := cutoff + 1

	var search func(start, group int, acc layout.Bytes)
	search = func(start, group int, acc layout.Bytes) {
		if group == k-1 {
			rest := input[start:]
			frag := acc + groupFrag(rest)
			if frag < bestFrag {
				path[group] = mergeGroup(rest)
				copy(best, path)
				bestFrag = frag
			}
			return
		}
		// The group covers input[start..=i]; leave enough entries for the
		// remaining groups.
		for i := start; i <= len(input)-(k-group); i++ {
			group0 := input[start : i+1]
			frag := acc + groupFrag(group0)
			if frag >= bestFrag {
				continue
			}
			path[group] = mergeGroup(group0)
			search(i+1, group+1, frag)
		}
	}
	search(0, 0, 0)
	return best, bestFrag
}

// groupFrag is the fragmentation of one contiguous group: every non-maximal
// entry wastes (max - size) bytes per allocation.
func groupFrag(group []span) layout.Bytes {
	max := group[len(group)-1].block
	var frag layout.Bytes
	for _, s := range group[:len(group)-1] {
		frag += (max - s.block) * layout.Bytes(s.count)
	}
	return frag
}

func mergeGroup(group []span) span {
	merged := span{block: group[len(group)-1].block}
	for _, s := range group {
		merged.count += s.count
	}
	return merged
}

// extend grows the pools to consume the full size budget: the free space is
// distributed along the weighting curve with carry rounding, then any
// residual bytes are topped off from the largest pool backward.
func extend(pools []span, size layout.Bytes) {
	var used layout.Bytes
	for _, p := range pools {
		used += p.block * layout.Bytes(p.count)
	}
	free := float64(size - used)
	for i, ratio := range ratios(len(pools)) {
		add := addCapacity(pools[i].block, size-used, ratio, free)
		used += pools[i].block * layout.Bytes(add)
		pools[i].count += add
	}
	topOff(pools, &used, size)
}

func ratios(n int) []float64 {
	if n == 1 {
		return []float64{1}
	}
	out := make([]float64, n)
	sum := 0.0
	for i := range out {
		x := float64(i) / float64(n-1)
		out[i] = 1/ratioSlope + (1-1/ratioSlope)*(1-(1-2*x)*(1-2*x))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// addCapacity converts a pool's weighted share of the budget to a block
// count, clamped so the pool never overdraws the free space.
func addCapacity(block, free layout.Bytes, ratio, total float64) uint32 {
	count := uint32(math.Round(total / float64(block) * ratio))
	if layout.Bytes(count)*block > free {
		over := float64(layout.Bytes(count)*block - free)
		count -= uint32(math.Ceil(over / float64(block)))
	}
	return count
}

// topOff folds residual bytes into whole blocks, largest pool first, until
// the remainder is smaller than the smallest block.
func topOff(pools []span, used *layout.Bytes, size layout.Bytes) {
	for i := len(pools) - 1; i >= 0; i-- {
		add := uint32((size - *used) / pools[i].block)
		*used += pools[i].block * layout.Bytes(add)
		pools[i].count += add
	}
}

func toPools(spans []span) []layout.Pool {
	out := make([]layout.Pool, len(spans))
	for i, s := range spans {
		out[i] = layout.Pool{
			Block:      s.block,
			Count:      layout.Fixed(layout.Bytes(s.count)),
			FixedCount: s.count,
		}
	}
	return out
}
