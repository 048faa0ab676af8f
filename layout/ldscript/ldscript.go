package ldscript

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/memkit/memkit/layout"
)

// ErrNotCalculated indicates the layout's computed fields are absent; the
// renderer refuses to emit addresses that were never calculated.
var ErrNotCalculated = errors.New("ldscript: layout is not calculated")

type memory struct {
	Name   string
	Mode   string
	Origin layout.Addr
	Length layout.Bytes
}

type stackTop struct {
	Name    string
	Address layout.Addr
}

type script struct {
	Memories      []memory
	StackTops     []stackTop
	Sections      []string
	IncludeBefore []string
	IncludeAfter  []string
}

var scriptTmpl = template.Must(template.New("ldscript").Parse(
	`/* Memory layout linker script generated by memkit. Do not edit. */
{{- range .IncludeBefore}}
INCLUDE {{.}}
{{- end}}

MEMORY
{
{{- range .Memories}}
    {{.Name}} ({{.Mode}}) : ORIGIN = {{.Origin}}, LENGTH = {{.Length}}
{{- end}}
}

{{- range .StackTops}}
PROVIDE({{.Name}}_STACK_TOP = {{.Address}});
{{- end}}

SECTIONS
{
{{- range .Sections}}
{{.}}
{{- end}}
}
{{- range .IncludeAfter}}
INCLUDE {{.}}
{{- end}}
`))

// Render writes the linker script for a fully calculated layout. Sections
// are emitted in ascending address order; origin/size pairs are taken
// exactly as computed.
func Render(w io.Writer, l *layout.Layout) error {
	if err := checkCalculated(l); err != nil {
		return err
	}
	ctx := script{
		IncludeBefore: l.Linker.IncludeBefore,
		IncludeAfter:  l.Linker.IncludeAfter,
	}
	for _, r := range l.Flash {
		ctx.Memories = append(ctx.Memories, memory{
			Name:   "FLASH_" + shout(r.Name),
			Mode:   "rx",
			Origin: r.Origin,
			Length: r.Size,
		})
	}
	for _, r := range l.RAM {
		ctx.Memories = append(ctx.Memories, memory{
			Name:   "RAM_" + shout(r.Name),
			Mode:   "wx",
			Origin: r.Origin,
			Length: r.Size,
		})
	}
	for _, s := range l.Stacks {
		ctx.StackTops = append(ctx.StackTops, stackTop{
			Name:    shout(s.Name),
			Address: s.Origin + layout.Addr(s.FixedSize),
		})
	}

	type placed struct {
		origin layout.Addr
		text   string
	}
	var sections []placed
	for _, s := range l.Streams {
		sections = append(sections, placed{s.Origin, streamSection(&s)})
	}
	sections = append(sections, placed{l.Data.Origin, dataSection(l)})
	for i := range l.Heaps {
		h := &l.Heaps[i]
		sections = append(sections, placed{h.Origin, heapSection(h)})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].origin < sections[j].origin
	})
	for _, s := range sections {
		ctx.Sections = append(ctx.Sections, s.text)
	}
	return scriptTmpl.Execute(w, &ctx)
}

// A zeroed consumer origin outside its region means Calculate never ran.
func checkCalculated(l *layout.Layout) error {
	within := func(ram string, origin layout.Addr) bool {
		for _, r := range l.RAM {
			if r.Name == ram {
				return origin >= r.Origin && origin <= r.Origin+layout.Addr(r.Size)
			}
		}
		return false
	}
	for _, s := range l.Stacks {
		if !within(s.RAM, s.Origin) {
			return fmt.Errorf("%w: stack.%s has no computed origin", ErrNotCalculated, s.Name)
		}
	}
	for _, s := range l.Streams {
		if !within(s.RAM, s.Origin) {
			return fmt.Errorf("%w: stream.%s has no computed origin", ErrNotCalculated, s.Name)
		}
	}
	for _, h := range l.Heaps {
		if !within(h.RAM, h.Origin) {
			return fmt.Errorf("%w: heap.%s has no computed origin", ErrNotCalculated, h.Name)
		}
	}
	if !within(l.Data.RAM, l.Data.Origin) {
		return fmt.Errorf("%w: data has no computed origin", ErrNotCalculated)
	}
	return nil
}

func streamSection(s *layout.Stream) string {
	name := shout(s.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "    /* stream %q */\n", s.Name)
	fmt.Fprintf(&b, "    .stream_%s %s (NOLOAD) : ALIGN(4)\n    {\n", s.Name, s.Origin)
	fmt.Fprintf(&b, "        STREAM_%s_RT = .;\n", name)
	fmt.Fprintf(&b, "        . = . + %d;\n", s.PrefixSize)
	fmt.Fprintf(&b, "        STREAM_%s_BUF = .;\n", name)
	fmt.Fprintf(&b, "        . = . + %d;\n", s.Size)
	fmt.Fprintf(&b, "    } > RAM_%s", shout(s.RAM))
	return b.String()
}

func dataSection(l *layout.Layout) string {
	var b strings.Builder
	b.WriteString("    /* combined data and bss */\n")
	fmt.Fprintf(&b, "    .databss %s (NOLOAD) : ALIGN(4)\n    {\n", l.Data.Origin)
	b.WriteString("        DATABSS_ORIGIN = .;\n")
	fmt.Fprintf(&b, "        . = . + %d;\n", l.Data.Size)
	fmt.Fprintf(&b, "    } > RAM_%s", shout(l.Data.RAM))
	return b.String()
}

func heapSection(h *layout.Heap) string {
	name := shout(h.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "    /* heap %q */\n", h.Name)
	fmt.Fprintf(&b, "    .heap_%s %s (NOLOAD) : ALIGN(4)\n    {\n", h.Name, h.Origin)
	fmt.Fprintf(&b, "        HEAP_%s_RT = .;\n", name)
	fmt.Fprintf(&b, "        . = . + %d;\n", h.PrefixSize)
	for i, pool := range h.Pools {
		fmt.Fprintf(&b, "        HEAP_%s_POOL_%d = .; /* block %s x %d */\n",
			name, i, pool.Block, pool.FixedCount)
		fmt.Fprintf(&b, "        . = . + %d;\n", uint32(pool.Block)*pool.FixedCount)
		fmt.Fprintf(&b, "        HEAP_%s_POOL_%d_EDGE = .;\n", name, i)
	}
	fmt.Fprintf(&b, "    } > RAM_%s", shout(h.RAM))
	return b.String()
}

// shout converts a declared name to a SHOUTY_SNAKE symbol fragment.
func shout(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
