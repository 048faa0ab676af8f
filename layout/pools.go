package layout

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// sizePools assigns a concrete block count to each of the heap's pools.
// Invoked after Calculate has fixed the heap's size. Fixed-count pools
// consume their blocks first; the remaining budget is shared among
// proportional pools with the same carry-forward rounding as section
// placement, except the rounding unit is each pool's own block size. The
// truncation leftover is folded back largest-block-first until the residue
// is smaller than the smallest block.
func (h *Heap) sizePools() error {
	sort.SliceStable(h.Pools, func(i, j int) bool {
		return h.Pools[i].Block < h.Pools[j].Block
	})

	var fixed Bytes
	for i := range h.Pools {
		if count, ok := h.Pools[i].Count.FixedSize(); ok {
			h.Pools[i].FixedCount = uint32(count)
			fixed += h.Pools[i].Block * count
		}
	}
	if fixed > h.FixedSize {
		return errf(ErrKindCapacity, "heap."+h.Name, ErrNoSpace,
			"heap.%s size is not enough to store all pools (%d < %d)",
			h.Name, h.FixedSize, fixed)
	}
	budget := h.FixedSize - fixed

	var flexSum float64
	flexLeft := 0
	for i := range h.Pools {
		if f, ok := h.Pools[i].Count.Fraction(); ok {
			flexSum += f
			flexLeft++
		}
	}

	// A zero budget leaves every proportional pool empty; skipping the
	// distribution keeps the rounding term finite.
	if flexLeft > 0 && budget > 0 {
		term := float64(budget) / flexSum
		var correction float64
		for i := range h.Pools {
			pool := &h.Pools[i]
			fraction, ok := pool.Count.Fraction()
			if !ok {
				continue
			}
			decimal := (fraction + correction) * term
			flexLeft--
			if flexLeft > 0 {
				block := float64(pool.Block)
				correction = math.Mod(decimal, block)
				if correction > block/2 {
					correction -= block
				}
				decimal -= correction
				correction /= term
			}
			count := Bytes(math.Floor(decimal / float64(pool.Block)))
			if count*pool.Block > budget {
				count = budget / pool.Block
			}
			pool.FixedCount = uint32(count)
			budget -= count * pool.Block
		}
	}

	// Fold the leftover from the largest-block pool backward.
	for i := len(h.Pools) - 1; i >= 0; i-- {
		add := uint32(budget / h.Pools[i].Block)
		h.Pools[i].FixedCount += add
		budget -= Bytes(add) * h.Pools[i].Block
	}

	Logger().Debug("heap pools sized",
		zap.String("heap", h.Name),
		zap.Uint32("size", uint32(h.FixedSize)),
		zap.Int("pools", len(h.Pools)),
		zap.Uint32("residue", uint32(budget)))
	return nil
}
