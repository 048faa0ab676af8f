package layout

import (
	"math"

	"go.uber.org/zap"
)

// Calculate resolves every computed field in the layout: each consumer's
// origin, fixed size, and prefix size, and each pool's block count.
// dataSize is the measured size of the combined data/bss section from a
// linked binary; Data.Padding is folded in on top of it. Calculate mutates
// the layout in place and is idempotent for identical inputs. On error the
// layout holds partially computed fields and must be discarded.
func (l *Layout) Calculate(dataSize Bytes) error {
	size := dataSize + l.Data.Padding
	return l.calculate(&size)
}

// Estimate resolves computed fields before the true data size is known: the
// data section absorbs all unclaimed flexible space in its region. It is
// the first stage of a two-stage build, followed by Calculate once the
// binary has been linked and measured.
func (l *Layout) Estimate() error {
	return l.calculate(nil)
}

func (l *Layout) calculate(dataSize *Bytes) error {
	l.calculatePrefixes()
	for i := range l.RAM {
		if err := l.calculateRegion(&l.RAM[i], dataSize); err != nil {
			return err
		}
	}
	for i := range l.Heaps {
		if err := l.Heaps[i].sizePools(); err != nil {
			return err
		}
	}
	return nil
}

// Prefixes are fixed metadata costs, independent of the consumer's spec
// kind, and must be charged before flexible distribution.
func (l *Layout) calculatePrefixes() {
	for i := range l.Streams {
		l.Streams[i].PrefixSize = StreamRuntimeSize
	}
	for i := range l.Heaps {
		l.Heaps[i].PrefixSize = HeapBaseSize + HeapPoolSize*Bytes(len(l.Heaps[i].Pools))
	}
}

func (l *Layout) calculateRegion(region *Region, dataSize *Bytes) error {
	var stacks, heaps []*Section
	var streams []*Stream
	for i := range l.Stacks {
		if l.Stacks[i].RAM == region.Name {
			stacks = append(stacks, &l.Stacks[i])
		}
	}
	for i := range l.Streams {
		if l.Streams[i].RAM == region.Name {
			streams = append(streams, &l.Streams[i])
		}
	}
	for i := range l.Heaps {
		if l.Heaps[i].RAM == region.Name {
			heaps = append(heaps, &l.Heaps[i].Section)
		}
	}

	// The first declared stack's spec kind decides the growth direction:
	// fixed-first places fixed consumers from the region's bottom and
	// flexible ones from the top, otherwise the reverse. This lets the
	// usual convention (stack grows down from top, heap up from bottom)
	// emerge from declaration order.
	fixedFirst := len(stacks) > 0 && stacks[0].Size.IsFixed()

	var fixed Bytes
	for _, s := range stacks {
		if n, ok := s.Size.FixedSize(); ok {
			fixed += n
		}
	}
	for _, s := range streams {
		fixed += s.Size + s.PrefixSize
	}
	for _, s := range heaps {
		if n, ok := s.Size.FixedSize(); ok {
			fixed += n
		}
		fixed += s.PrefixSize
	}
	if fixed > region.Size {
		return errf(ErrKindCapacity, "ram."+region.Name, ErrNoSpace,
			"ram.%s size is not enough to store all sections (%d < %d)",
			region.Name, region.Size, fixed)
	}
	flexible := region.Size - fixed

	// When this is the data section's region, the data size comes off the
	// flexible budget; without an external size the data section absorbs
	// all of it (stage one).
	var regionData *Bytes
	if l.Data.RAM == region.Name {
		size := flexible
		if dataSize != nil {
			size = *dataSize
		}
		if size > flexible {
			return errf(ErrKindCapacity, "ram."+region.Name, ErrNoSpace,
				"ram.%s size is not enough to store the data section (%d < %d)",
				region.Name, flexible, size)
		}
		regionData = &size
		flexible -= size
	}

	var flexSum float64
	flexCount := 0
	for _, s := range stacks {
		if f, ok := s.Size.Fraction(); ok {
			flexSum += f
			flexCount++
		}
	}
	for _, s := range heaps {
		if f, ok := s.Size.Fraction(); ok {
			flexSum += f
			flexCount++
		}
	}

	p := placer{
		fixedFirst: fixedFirst,
		fixedPtr:   region.Origin + Addr(region.Size),
		flexPtr:    region.Origin,
		term:       float64(flexible) / flexSum,
		flexLeft:   flexCount,
		flexBudget: flexible,
	}
	if fixedFirst {
		p.fixedPtr, p.flexPtr = p.flexPtr, p.fixedPtr
	}

	p.placeSections(stacks)
	dataOrigin := p.placeStreams(streams, regionData)
	if regionData != nil {
		l.Data.Origin = dataOrigin
		l.Data.Size = *regionData
	}
	p.placeSections(heaps)

	Logger().Debug("region calculated",
		zap.String("ram", region.Name),
		zap.Bool("fixed-first", fixedFirst),
		zap.Uint32("fixed", uint32(fixed)),
		zap.Uint32("flexible", uint32(flexible)))
	return nil
}

// placer carries the per-region placement state: two cursors advancing from
// opposite ends of the region, and the carry-forward rounding state shared
// by every flexible section in the region.
type placer struct {
	fixedFirst bool
	fixedPtr   Addr
	flexPtr    Addr
	term       float64
	flexLeft   int
	flexBudget Bytes
	correction float64
}

// placeSections assigns origin and fixed size to a group of stacks or heap
// sections, fixed specs on the fixed cursor and flexible ones on the
// opposite cursor.
func (p *placer) placeSections(sections []*Section) {
	for _, s := range sections {
		if n, ok := s.Size.FixedSize(); ok {
			s.FixedSize = n
			s.Origin = p.placeFixed(n + s.PrefixSize)
			continue
		}
		fraction, _ := s.Size.Fraction()
		s.FixedSize = p.nextFlexible(fraction)
		s.Origin = p.placeFlexible(s.FixedSize + s.PrefixSize)
	}
}

// placeStreams assigns stream origins on the fixed cursor, then the data
// section right after them. Returns the data origin when dataSize is set.
func (p *placer) placeStreams(streams []*Stream, dataSize *Bytes) Addr {
	for _, s := range streams {
		s.Origin = p.placeFixed(s.Size + s.PrefixSize)
	}
	var origin Addr
	if dataSize != nil {
		origin = p.placeFixed(*dataSize)
	}
	return origin
}

func (p *placer) placeFixed(n Bytes) Addr {
	if p.fixedFirst {
		origin := p.fixedPtr
		p.fixedPtr += Addr(n)
		return origin
	}
	p.fixedPtr -= Addr(n)
	return p.fixedPtr
}

func (p *placer) placeFlexible(n Bytes) Addr {
	if p.fixedFirst {
		p.flexPtr -= Addr(n)
		return p.flexPtr
	}
	origin := p.flexPtr
	p.flexPtr += Addr(n)
	return origin
}

// nextFlexible resolves one flexible fraction against the remaining budget
// using carry-forward rounding: the value is snapped to the word grid, and
// the signed residual (at most half a word) is divided back out of the term
// and carried into the next consumer's computation. The final consumer
// takes the exact remainder, making the region's exact partition structural
// rather than a floating-point accident.
func (p *placer) nextFlexible(fraction float64) Bytes {
	p.flexLeft--
	if p.flexLeft == 0 || p.flexBudget == 0 {
		n := p.flexBudget
		p.flexBudget = 0
		return n
	}
	decimal := (fraction + p.correction) * p.term
	p.correction = math.Mod(decimal, WordSize)
	if p.correction > WordSize/2 {
		p.correction -= WordSize
	}
	decimal -= p.correction
	p.correction /= p.term
	n := Bytes(math.Floor(decimal))
	if n > p.flexBudget {
		n = p.flexBudget
	}
	p.flexBudget -= n
	return n
}
