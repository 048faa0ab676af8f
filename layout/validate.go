package layout

import "fmt"

// Validate cross-checks the declared layout without mutating it: every
// consumer must reference an existing RAM region, names must be unique,
// declared origins and sizes must be word-aligned and non-zero where a zero
// size makes no sense, and stream buffers must meet the protocol minimum.
// The first violation aborts with an error naming the offending path.
func (l *Layout) Validate() error {
	if err := l.validateCoherence(); err != nil {
		return err
	}
	if err := l.validateStreamSizes(); err != nil {
		return err
	}
	return l.validateAddresses()
}

func (l *Layout) validateCoherence() error {
	ram := map[string]bool{}
	for _, r := range l.RAM {
		if ram[r.Name] {
			return errf(ErrKindCoherence, "ram."+r.Name, ErrDuplicateName,
				"ram.%s is declared more than once", r.Name)
		}
		ram[r.Name] = true
	}
	flash := map[string]bool{}
	for _, r := range l.Flash {
		if flash[r.Name] {
			return errf(ErrKindCoherence, "flash."+r.Name, ErrDuplicateName,
				"flash.%s is declared more than once", r.Name)
		}
		flash[r.Name] = true
	}
	seen := map[string]bool{}
	for _, s := range l.Stacks {
		if seen[s.Name] {
			return errf(ErrKindCoherence, "stack."+s.Name, ErrDuplicateName,
				"stack.%s is declared more than once", s.Name)
		}
		seen[s.Name] = true
		if !ram[s.RAM] {
			return errf(ErrKindCoherence, "stack."+s.Name+".ram", ErrUnknownRegion,
				"stack.%s.ram points to an unknown RAM region %s", s.Name, s.RAM)
		}
	}
	seen = map[string]bool{}
	for _, s := range l.Streams {
		if seen[s.Name] {
			return errf(ErrKindCoherence, "stream."+s.Name, ErrDuplicateName,
				"stream.%s is declared more than once", s.Name)
		}
		seen[s.Name] = true
		if !ram[s.RAM] {
			return errf(ErrKindCoherence, "stream."+s.Name+".ram", ErrUnknownRegion,
				"stream.%s.ram points to an unknown RAM region %s", s.Name, s.RAM)
		}
	}
	seen = map[string]bool{}
	for _, h := range l.Heaps {
		if seen[h.Name] {
			return errf(ErrKindCoherence, "heap."+h.Name, ErrDuplicateName,
				"heap.%s is declared more than once", h.Name)
		}
		seen[h.Name] = true
		if !ram[h.RAM] {
			return errf(ErrKindCoherence, "heap."+h.Name+".ram", ErrUnknownRegion,
				"heap.%s.ram points to an unknown RAM region %s", h.Name, h.RAM)
		}
	}
	if !ram[l.Data.RAM] {
		return errf(ErrKindCoherence, "data.ram", ErrUnknownRegion,
			"data.ram points to an unknown RAM region %s", l.Data.RAM)
	}
	return nil
}

func (l *Layout) validateStreamSizes() error {
	for _, s := range l.Streams {
		if s.Size < MinStreamSize {
			return errf(ErrKindConstraint, "stream."+s.Name+".size", ErrStreamTooSmall,
				"stream.%s.size is set to %s, which is less than the minimum possible size %s",
				s.Name, s.Size, MinStreamSize)
		}
	}
	return nil
}

func (l *Layout) validateAddresses() error {
	for _, r := range l.Flash {
		path := "flash." + r.Name
		if err := validateValue(path+".origin", uint32(r.Origin), false); err != nil {
			return err
		}
		if err := validateValue(path+".size", uint32(r.Size), true); err != nil {
			return err
		}
	}
	for _, r := range l.RAM {
		path := "ram." + r.Name
		if err := validateValue(path+".origin", uint32(r.Origin), false); err != nil {
			return err
		}
		if err := validateValue(path+".size", uint32(r.Size), true); err != nil {
			return err
		}
	}
	for _, s := range l.Stacks {
		if size, ok := s.Size.FixedSize(); ok {
			if err := validateValue("stack."+s.Name+".size", uint32(size), true); err != nil {
				return err
			}
		}
	}
	for _, s := range l.Streams {
		if err := validateValue("stream."+s.Name+".size", uint32(s.Size), true); err != nil {
			return err
		}
	}
	for _, h := range l.Heaps {
		if size, ok := h.Size.FixedSize(); ok {
			if err := validateValue("heap."+h.Name+".size", uint32(size), true); err != nil {
				return err
			}
		}
		for i, pool := range h.Pools {
			path := fmt.Sprintf("heap.%s.pools[%d].block", h.Name, i)
			if err := validateValue(path, uint32(pool.Block), true); err != nil {
				return err
			}
		}
	}
	// Padding may be zero but never unaligned.
	return validateValue("data.padding", uint32(l.Data.Padding), false)
}

func validateValue(path string, value uint32, nonZero bool) error {
	if remainder := value % WordSize; remainder != 0 {
		return errf(ErrKindAlignment, path, ErrMisaligned,
			"%s is not word-aligned (%d %% %d == %d)", path, value, WordSize, remainder)
	}
	if nonZero && value == 0 {
		return errf(ErrKindAlignment, path, ErrZeroSize,
			"%s must be greater than zero", path)
	}
	return nil
}
