package layout

// Metadata overhead sizes, fixed by the firmware runtime's on-device
// structures. Prefix sizes are charged against a consumer's region like any
// other fixed cost but are not part of the consumer's declared size.
const (
	// StreamRuntimeSize is the per-stream runtime descriptor: a write mask
	// plus read and write offsets, one word each.
	StreamRuntimeSize Bytes = 12

	// HeapBaseSize is the per-heap bookkeeping overhead.
	HeapBaseSize Bytes = 0

	// HeapPoolSize is the per-pool bookkeeping record a real allocator
	// reads at boot.
	HeapPoolSize Bytes = 16

	// MinStreamSize is the smallest permitted stream buffer: a 16-byte
	// handshake preamble plus the runtime descriptor.
	MinStreamSize Bytes = 16 + StreamRuntimeSize
)

// Region is a named contiguous span of device address space, flash or RAM.
// Regions are immutable once loaded; the calculator only ever partitions
// them.
type Region struct {
	Name   string `toml:"name"`
	Origin Addr   `toml:"origin"`
	Size   Bytes  `toml:"size"`
}

// Section is a stack or heap span inside a RAM region. Origin, FixedSize,
// and PrefixSize are computed by Calculate and are zero until then.
type Section struct {
	Name string   `toml:"name"`
	RAM  string   `toml:"ram"`
	Size SizeSpec `toml:"size"`

	Origin     Addr  `toml:"origin"`
	FixedSize  Bytes `toml:"fixed-size"`
	PrefixSize Bytes `toml:"prefix-size"`
}

// Stream is a trace-stream buffer inside a RAM region. Unlike Section its
// size is always fixed; the runtime descriptor overhead is carried in
// PrefixSize.
type Stream struct {
	Name string `toml:"name"`
	RAM  string `toml:"ram"`
	Size Bytes  `toml:"size"`

	Origin     Addr  `toml:"origin"`
	PrefixSize Bytes `toml:"prefix-size"`
}

// Pool is one fixed-block-size pool inside a heap. Count may be fixed or a
// share of the heap's remaining capacity; FixedCount is the resolved block
// count.
type Pool struct {
	Block Bytes    `toml:"block"`
	Count SizeSpec `toml:"count"`

	FixedCount uint32 `toml:"fixed-count"`
}

// Heap is a heap span plus its free-block pools. Pools are sorted ascending
// by block size before sizing.
type Heap struct {
	Section
	Pools []Pool `toml:"pools"`
}

// Data is the single combined data/bss section of a layout. Its size is
// supplied externally (from a linked binary) or estimated; Padding is extra
// declarative bytes folded in to compensate alignment.
type Data struct {
	RAM     string `toml:"ram"`
	Padding Bytes  `toml:"padding,omitempty"`

	Origin Addr  `toml:"origin"`
	Size   Bytes `toml:"size"`
}

// Linker holds additional files spliced into rendered linker scripts.
type Linker struct {
	IncludeBefore []string `toml:"include-before,omitempty"`
	IncludeAfter  []string `toml:"include-after,omitempty"`
}

// Layout is the aggregate root: all memory regions and their consumers.
// Slices preserve declaration order, which the calculator's direction
// heuristic depends on.
type Layout struct {
	Flash   []Region  `toml:"flash,omitempty"`
	RAM     []Region  `toml:"ram"`
	Data    Data      `toml:"data"`
	Stacks  []Section `toml:"stack,omitempty"`
	Streams []Stream  `toml:"stream,omitempty"`
	Heaps   []Heap    `toml:"heap,omitempty"`
	Linker  Linker    `toml:"linker"`
}

// Region lookup across both address spaces; RAM first since consumers only
// ever reference RAM.
func (l *Layout) region(name string) *Region {
	for i := range l.RAM {
		if l.RAM[i].Name == name {
			return &l.RAM[i]
		}
	}
	for i := range l.Flash {
		if l.Flash[i].Name == name {
			return &l.Flash[i]
		}
	}
	return nil
}
