package heaptrace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/memkit/layout"
)

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, referenceTrace(t), 2048))

	out := buf.String()
	assert.Contains(t, out, " HEAP USAGE ")
	assert.Contains(t, out, " <size> <max count> <allocations>")
	assert.Contains(t, out, "      4          10            10")
	assert.Contains(t, out, "     32           1             1")
	assert.Contains(t, out, "Maximum memory usage: ")
	assert.Contains(t, out, "160 / 7.81%")
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, New(1024), 1024)
	assert.ErrorIs(t, err, ErrEmptyTrace)
	assert.Zero(t, buf.Len())
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteReportPropagatesWriteError(t *testing.T) {
	broken := errors.New("pipe closed")
	err := WriteReport(failWriter{err: broken}, referenceTrace(t), 2048)
	assert.ErrorIs(t, err, broken)
}

func TestWriteSuggestion(t *testing.T) {
	pools, frag, err := Optimize(referenceTrace(t), 256, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSuggestion(&buf, pools, frag, 1024))

	out := buf.String()
	assert.Contains(t, out, " SUGGESTED LAYOUT ")
	assert.Contains(t, out, "# Fragmentation: ")
	assert.Contains(t, out, "88 / 8.59%")
	assert.Contains(t, out, `size = "256"`)
	assert.Contains(t, out, `block = "8"`)
	assert.Contains(t, out, `count = "16"`)
	assert.Contains(t, out, `block = "32"`)
}

func TestWriteSuggestionSkipsEmptyPools(t *testing.T) {
	pools := []layout.Pool{
		{Block: 8, Count: layout.Fixed(16), FixedCount: 16},
		{Block: 64, Count: layout.Fixed(0), FixedCount: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSuggestion(&buf, pools, 0, 1024))
	assert.Contains(t, buf.String(), `block = "8"`)
	assert.NotContains(t, buf.String(), `block = "64"`)
}

func TestSuggestHeap(t *testing.T) {
	pools, _, err := Optimize(referenceTrace(t), 256, 2)
	require.NoError(t, err)

	heap := SuggestHeap("main", "sram1", pools)
	assert.Equal(t, "main", heap.Name)
	assert.Equal(t, "sram1", heap.RAM)
	assert.Equal(t, layout.Fixed(256), heap.Size)
	assert.Equal(t, pools, heap.Pools)
}
