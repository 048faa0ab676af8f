// Package ldscript renders a calculated layout to a GNU linker script:
// MEMORY blocks per region, stack-top symbols, and NOLOAD section
// placements for streams, the data section, and heaps with their pool edge
// symbols. Origins and sizes appear exactly as computed; the renderer never
// rounds.
package ldscript
