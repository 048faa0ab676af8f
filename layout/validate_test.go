package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLayout() *Layout {
	return &Layout{
		Flash:   []Region{{Name: "main", Origin: 0x08000000, Size: 128 * 1024}},
		RAM:     singleRAM(20 * 1024),
		Data:    Data{RAM: "main"},
		Stacks:  []Section{{Name: "core0", RAM: "main", Size: Fixed(4 * 1024)}},
		Streams: []Stream{{Name: "core0", RAM: "main", Size: 260}},
		Heaps: []Heap{{
			Section: Section{Name: "core0", RAM: "main", Size: Percent(100)},
			Pools:   []Pool{{Block: 4, Count: Percent(100)}},
		}},
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validLayout().Validate())
}

func TestValidateCoherence(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Layout)
		path   string
	}{
		{"stack ram", func(l *Layout) { l.Stacks[0].RAM = "other" }, "stack.core0.ram"},
		{"stream ram", func(l *Layout) { l.Streams[0].RAM = "other" }, "stream.core0.ram"},
		{"heap ram", func(l *Layout) { l.Heaps[0].RAM = "other" }, "heap.core0.ram"},
		{"data ram", func(l *Layout) { l.Data.RAM = "other" }, "data.ram"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := validLayout()
			tc.mutate(l)
			err := l.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownRegion)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, ErrKindCoherence, e.Kind)
			assert.Equal(t, tc.path, e.Path)
		})
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	l := validLayout()
	l.Stacks = append(l.Stacks, Section{Name: "core0", RAM: "main", Size: Percent(100)})
	err := l.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), "stack.core0")

	l = validLayout()
	l.RAM = append(l.RAM, Region{Name: "main", Origin: 0x30000000, Size: 1024})
	err = l.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestValidateStreamMinimum(t *testing.T) {
	l := validLayout()
	l.Streams[0].Size = 24
	err := l.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamTooSmall)
	assert.Contains(t, err.Error(), "stream.core0.size")
	assert.Contains(t, err.Error(), "24")
	assert.Contains(t, err.Error(), "28")

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrKindConstraint, e.Kind)

	// The exact minimum is accepted.
	l.Streams[0].Size = MinStreamSize
	assert.NoError(t, l.Validate())
}

func TestValidateAlignment(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*Layout)
		path     string
		sentinel error
	}{
		{"ram origin", func(l *Layout) { l.RAM[0].Origin = 0x20000002 }, "ram.main.origin", ErrMisaligned},
		{"ram size zero", func(l *Layout) { l.RAM[0].Size = 0 }, "ram.main.size", ErrZeroSize},
		{"flash size", func(l *Layout) { l.Flash[0].Size = 127 }, "flash.main.size", ErrMisaligned},
		{"stack size", func(l *Layout) { l.Stacks[0].Size = Fixed(4098) }, "stack.core0.size", ErrMisaligned},
		{"stack size zero", func(l *Layout) { l.Stacks[0].Size = Fixed(0) }, "stack.core0.size", ErrZeroSize},
		{"stream size", func(l *Layout) { l.Streams[0].Size = 261 }, "stream.core0.size", ErrMisaligned},
		{"heap size", func(l *Layout) { l.Heaps[0].Size = Fixed(1022) }, "heap.core0.size", ErrMisaligned},
		{"pool block", func(l *Layout) { l.Heaps[0].Pools[0].Block = 6 }, "heap.core0.pools[0].block", ErrMisaligned},
		{"pool block zero", func(l *Layout) { l.Heaps[0].Pools[0].Block = 0 }, "heap.core0.pools[0].block", ErrZeroSize},
		{"data padding", func(l *Layout) { l.Data.Padding = 2 }, "data.padding", ErrMisaligned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := validLayout()
			tc.mutate(l)
			err := l.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, ErrKindAlignment, e.Kind)
			assert.Equal(t, tc.path, e.Path)
		})
	}
}

// Flexible sizes carry no alignment obligation of their own; the calculator
// aligns whatever they resolve to.
func TestValidateFlexibleSkipsAlignment(t *testing.T) {
	l := validLayout()
	l.Stacks[0].Size = Percent(33.33)
	assert.NoError(t, l.Validate())
}

// Validation never mutates: a validated layout still has no computed
// fields.
func TestValidatePure(t *testing.T) {
	l := validLayout()
	require.NoError(t, l.Validate())
	assert.Equal(t, Addr(0), l.Stacks[0].Origin)
	assert.Equal(t, Bytes(0), l.Stacks[0].FixedSize)
	assert.Equal(t, Bytes(0), l.Heaps[0].PrefixSize)
}
