package ldscript_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/memkit/layout"
	"github.com/memkit/memkit/layout/ldscript"
)

func stm32Layout() *layout.Layout {
	return &layout.Layout{
		Flash: []layout.Region{{Name: "main", Origin: 0x08000000, Size: 128 * 1024}},
		RAM:   []layout.Region{{Name: "main", Origin: 0x20000000, Size: 20 * 1024}},
		Data:  layout.Data{RAM: "main"},
		Stacks: []layout.Section{
			{Name: "core0", RAM: "main", Size: layout.Fixed(0x1000)},
		},
		Streams: []layout.Stream{
			{Name: "core0", RAM: "main", Size: 260},
		},
		Heaps: []layout.Heap{{
			Section: layout.Section{Name: "main", RAM: "main", Size: layout.Percent(100)},
			Pools:   []layout.Pool{{Block: 4, Count: layout.Percent(100)}},
		}},
		Linker: layout.Linker{
			IncludeBefore: []string{"prelude.ld"},
			IncludeAfter:  []string{"epilogue.ld"},
		},
	}
}

func TestRender(t *testing.T) {
	l := stm32Layout()
	require.NoError(t, l.Validate())
	require.NoError(t, l.Calculate(2048))

	var buf bytes.Buffer
	require.NoError(t, ldscript.Render(&buf, l))
	out := buf.String()

	assert.Contains(t, out, "FLASH_MAIN (rx) : ORIGIN = 0x08000000, LENGTH = 128K")
	assert.Contains(t, out, "RAM_MAIN (wx) : ORIGIN = 0x20000000, LENGTH = 20K")
	assert.Contains(t, out, "PROVIDE(CORE0_STACK_TOP = 0x20001000);")
	assert.Contains(t, out, "INCLUDE prelude.ld")
	assert.Contains(t, out, "INCLUDE epilogue.ld")

	assert.Contains(t, out, ".stream_core0 0x20001000 (NOLOAD) : ALIGN(4)")
	assert.Contains(t, out, "STREAM_CORE0_RT = .;")
	assert.Contains(t, out, "STREAM_CORE0_BUF = .;")
	assert.Contains(t, out, ". = . + 12;")
	assert.Contains(t, out, ". = . + 260;")

	assert.Contains(t, out, ".databss 0x20001110 (NOLOAD) : ALIGN(4)")
	assert.Contains(t, out, ". = . + 2048;")

	assert.Contains(t, out, ".heap_main 0x20001910 (NOLOAD) : ALIGN(4)")
	assert.Contains(t, out, "HEAP_MAIN_POOL_0 = .; /* block 4 x 3512 */")
	assert.Contains(t, out, "HEAP_MAIN_POOL_0_EDGE = .;")
	assert.Contains(t, out, ". = . + 14048;")
	assert.Contains(t, out, "} > RAM_MAIN")
}

// Sections are emitted in ascending address order regardless of
// declaration order.
func TestRenderSectionOrder(t *testing.T) {
	l := stm32Layout()
	require.NoError(t, l.Calculate(2048))

	var buf bytes.Buffer
	require.NoError(t, ldscript.Render(&buf, l))
	out := buf.String()

	stream := strings.Index(out, ".stream_core0")
	data := strings.Index(out, ".databss")
	heap := strings.Index(out, ".heap_main")
	require.Greater(t, stream, 0)
	assert.Less(t, stream, data)
	assert.Less(t, data, heap)
}

// Declared names become SHOUTY_SNAKE symbol fragments.
func TestRenderSymbolNames(t *testing.T) {
	l := stm32Layout()
	l.Stacks[0].Name = "pro.cpu"
	require.NoError(t, l.Calculate(2048))

	var buf bytes.Buffer
	require.NoError(t, ldscript.Render(&buf, l))
	assert.Contains(t, buf.String(), "PROVIDE(PRO_CPU_STACK_TOP = 0x20001000);")
}

func TestRenderNotCalculated(t *testing.T) {
	var buf bytes.Buffer
	err := ldscript.Render(&buf, stm32Layout())
	require.Error(t, err)
	assert.ErrorIs(t, err, ldscript.ErrNotCalculated)
	assert.Zero(t, buf.Len())
}
