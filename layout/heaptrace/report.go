package heaptrace

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"

	"github.com/memkit/memkit/layout"
)

// Reports are fixed at 80 columns regardless of the output device, so the
// same bytes land in a terminal, a file, or a CI log.
const reportWidth = 80

var bold = lipgloss.NewStyle().Bold(true)

// WriteReport writes the heap usage table for a histogram: one row per
// observed allocation size with its peak concurrency and cumulative count,
// followed by the maximum memory usage against the heap size.
func WriteReport(w io.Writer, h *Histogram, size layout.Bytes) error {
	if h.Len() == 0 {
		return ErrEmptyTrace
	}
	sw := &stickyWriter{w: w}
	sw.line(banner(" HEAP USAGE "))
	sw.line(bold.Render(" <size> <max count> <allocations>"))
	var used layout.Bytes
	for _, e := range h.Entries() {
		sw.printf(" %6s %11d %13d\n", e.Size, e.Peak, e.Total)
		used += e.Size * layout.Bytes(e.Peak)
	}
	sw.printf("Maximum memory usage: %s\n",
		bold.Render(fmt.Sprintf("%d / %.2f%%", used, percent(used, size))))
	return sw.err
}

// WriteSuggestion writes an optimized pool layout as a heap fragment ready
// to paste into a layout file, headed by the fragmentation it costs.
// Zero-count pools are skipped.
func WriteSuggestion(w io.Writer, pools []layout.Pool, frag, size layout.Bytes) error {
	sw := &stickyWriter{w: w}
	sw.line(banner(" SUGGESTED LAYOUT "))
	sw.printf("# Fragmentation: %s\n\n",
		bold.Render(fmt.Sprintf("%d / %.2f%%", frag, percent(frag, size))))
	if sw.err != nil {
		return sw.err
	}
	fragment := struct {
		Size  layout.Bytes  `toml:"size"`
		Pools []layout.Pool `toml:"pools"`
	}{Size: poolBytes(pools)}
	for _, p := range pools {
		if p.FixedCount == 0 {
			continue
		}
		fragment.Pools = append(fragment.Pools, p)
	}
	return toml.NewEncoder(w).Encode(fragment)
}

// SuggestHeap is the programmatic form of WriteSuggestion: a heap section
// sized to its pools, ready to splice into a Layout.
func SuggestHeap(name, ram string, pools []layout.Pool) layout.Heap {
	return layout.Heap{
		Section: layout.Section{
			Name: name,
			RAM:  ram,
			Size: layout.Fixed(poolBytes(pools)),
		},
		Pools: pools,
	}
}

func poolBytes(pools []layout.Pool) layout.Bytes {
	var size layout.Bytes
	for _, p := range pools {
		size += p.Block * layout.Bytes(p.FixedCount)
	}
	return size
}

func percent(part, whole layout.Bytes) float64 {
	return float64(part) / float64(whole) * 100
}

func banner(title string) string {
	pad := reportWidth - len(title)
	left := pad / 2
	return bold.Render(strings.Repeat("-", left) + title + strings.Repeat("-", pad-left))
}

// stickyWriter keeps the first write error and muzzles the rest.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (sw *stickyWriter) printf(format string, args ...any) {
	if sw.err == nil {
		_, sw.err = fmt.Fprintf(sw.w, format, args...)
	}
}

func (sw *stickyWriter) line(s string) {
	if sw.err == nil {
		_, sw.err = fmt.Fprintln(sw.w, s)
	}
}
