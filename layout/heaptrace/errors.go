package heaptrace

import "errors"

var (
	// ErrCorruptTrace indicates an allocation event that cannot have come
	// from a well-formed trace: a zero or over-limit allocation, or a free
	// with no live allocation of that size.
	ErrCorruptTrace = errors.New("heaptrace: trace data is corrupted")

	// ErrEmptyTrace indicates an optimization was requested over a
	// histogram with no entries.
	ErrEmptyTrace = errors.New("heaptrace: histogram is empty")

	// ErrOverBudget indicates the observed peak usage exceeds the heap
	// budget, so no pool layout can fit.
	ErrOverBudget = errors.New("heaptrace: peak usage exceeds heap size")

	// ErrPoolCount indicates a non-positive target pool count.
	ErrPoolCount = errors.New("heaptrace: pool count must be at least one")
)
