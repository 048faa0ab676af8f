package heaptrace

import (
	"fmt"
	"sort"

	"github.com/memkit/memkit/layout"
)

// Entry is the processed record for one allocation size.
type Entry struct {
	Size  layout.Bytes
	Live  uint32 // currently outstanding allocations
	Peak  uint32 // maximum concurrent allocations observed
	Total uint32 // cumulative allocations
}

// Histogram is a size-ordered mapping from allocation size to observed
// allocation counts, folded from a device's allocation-event log. It is the
// only input to the optimizer.
type Histogram struct {
	limit   layout.Bytes
	entries map[layout.Bytes]*Entry
}

// New returns an empty histogram. limit is the heap size the trace was
// recorded against; any allocation above it marks the trace as corrupt.
func New(limit layout.Bytes) *Histogram {
	return &Histogram{limit: limit, entries: map[layout.Bytes]*Entry{}}
}

// RecordAlloc folds one allocation event into the histogram.
func (h *Histogram) RecordAlloc(size layout.Bytes) error {
	if size == 0 || size > h.limit {
		return fmt.Errorf("allocation of %s outside the heap limit %s: %w",
			size, h.limit, ErrCorruptTrace)
	}
	e := h.entry(size)
	e.Live++
	e.Total++
	if e.Peak < e.Live {
		e.Peak = e.Live
	}
	return nil
}

// RecordFree folds one deallocation event into the histogram.
func (h *Histogram) RecordFree(size layout.Bytes) error {
	e := h.entry(size)
	if e.Live == 0 {
		return fmt.Errorf("free of %s with no live allocation: %w", size, ErrCorruptTrace)
	}
	e.Live--
	return nil
}

// RecordResize folds an in-place grow or shrink event: a free of the old
// size followed by an allocation of the new one.
func (h *Histogram) RecordResize(oldSize, newSize layout.Bytes) error {
	if err := h.RecordFree(oldSize); err != nil {
		return err
	}
	return h.RecordAlloc(newSize)
}

func (h *Histogram) entry(size layout.Bytes) *Entry {
	e := h.entries[size]
	if e == nil {
		e = &Entry{Size: size}
		h.entries[size] = e
	}
	return e
}

// Len returns the number of distinct allocation sizes observed.
func (h *Histogram) Len() int {
	return len(h.entries)
}

// Entries returns the histogram's records in ascending size order.
func (h *Histogram) Entries() []Entry {
	out := make([]Entry, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out
}

// PeakUsage returns the maximum concurrent memory usage: the sum of
// size x peak over all entries.
func (h *Histogram) PeakUsage() layout.Bytes {
	var used layout.Bytes
	for _, e := range h.entries {
		used += e.Size * layout.Bytes(e.Peak)
	}
	return used
}
