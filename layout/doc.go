// Package layout plans how a microcontroller's fixed flash and RAM regions
// are subdivided among competing consumers: call stacks, trace-stream
// buffers, and heap allocators.
//
// # Overview
//
// A Layout is the aggregate root. It owns named memory Regions plus the
// stacks, streams, and heaps declared against them, and one combined
// data/bss section per layout. Consumers declare either a fixed byte size
// ("4K") or a proportional share of whatever space remains ("25%").
//
// The engine solves two problems:
//
//   - Static layout calculation: Calculate and Estimate partition every RAM
//     region exactly among its consumers, assigning concrete origins and
//     sizes with every address word-aligned and no byte left unaccounted.
//   - Heap pool sizing: each heap's free-block pools receive concrete block
//     counts that exactly fill the heap's computed capacity.
//
// Outputs become linker-script addresses and firmware-embedded constants,
// so calculation is deterministic and idempotent: re-running with identical
// inputs reproduces identical results bit-for-bit.
//
// # Two-Stage Builds
//
// The true size of the combined data/bss section is only known after a
// binary is linked once. Estimate performs the first pass, letting the data
// section absorb all unclaimed flexible space in its region. After linking,
// Calculate is re-invoked with the measured size to produce final addresses.
//
//	l, err := layout.ReadFile("layout.toml") // validated + stage one
//	if err != nil {
//	    return err
//	}
//	// ... link once, measure .data+.bss ...
//	if err := l.Calculate(dataSize); err != nil {
//	    return err
//	}
//
// # Proportional Distribution
//
// Flexible consumers share a region's leftover budget using carry-forward
// rounding: each rounding step's residual error is propagated into the next
// consumer's computation, so the group's total matches the budget exactly
// instead of drifting the way naive independent rounding does.
//
// # Thread Safety
//
// The engine is purely synchronous and performs no I/O of its own. A Layout
// is exclusively owned by its caller; concurrent use of one Layout value
// requires external synchronization.
//
// # Related Packages
//
//   - github.com/memkit/memkit/layout/heaptrace: trace-driven heap pool
//     optimization and bootstrap layouts
//   - github.com/memkit/memkit/layout/ldscript: linker-script rendering
package layout
