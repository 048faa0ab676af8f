package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	cases := []struct {
		in   string
		want Bytes
	}{
		{"0", 0},
		{"260", 260},
		{"4K", 4096},
		{"20K", 20 * 1024},
		{"3M", 3 * 1024 * 1024},
		{"0x20", 0x20},
		{"0X20", 0x20},
		{"0x4K", 0x4 * 1024},
		{"0755", 0o755},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseBytes(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseBytesInvalid(t *testing.T) {
	for _, in := range []string{"", "K", "12Q", "-4", "0x", "4294967296", "4194304K"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseBytes(in)
			assert.Error(t, err)
		})
	}
}

func TestBytesCanonicalString(t *testing.T) {
	cases := []struct {
		in   Bytes
		want string
	}{
		{0, "0"},
		{260, "260"},
		{4096, "4K"},
		{3 * 1024 * 1024, "3M"},
		{3 * 1024, "3K"},
		{4100, "4100"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.in.String())
	}
}

func TestBytesRoundTrip(t *testing.T) {
	for _, v := range []Bytes{0, 4, 260, 4096, 20 * 1024, 15696, 3 * 1024 * 1024} {
		parsed, err := ParseBytes(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
}

func TestAddrString(t *testing.T) {
	assert.Equal(t, "0x20000000", Addr(0x20000000).String())
	assert.Equal(t, "0x00000000", Addr(0).String())

	parsed, err := ParseAddr("0x20000000")
	require.NoError(t, err)
	assert.Equal(t, Addr(0x20000000), parsed)
}

func TestSizeSpecParse(t *testing.T) {
	var s SizeSpec
	require.NoError(t, s.UnmarshalText([]byte("12.5%")))
	require.True(t, s.IsFlexible())
	f, ok := s.Fraction()
	require.True(t, ok)
	assert.InDelta(t, 0.125, f, 1e-12)
	assert.Equal(t, "12.50%", s.String())

	require.NoError(t, s.UnmarshalText([]byte("4K")))
	require.True(t, s.IsFixed())
	n, ok := s.FixedSize()
	require.True(t, ok)
	assert.Equal(t, Bytes(4096), n)
	assert.Equal(t, "4K", s.String())
}

func TestSizeSpecParseInvalidPercent(t *testing.T) {
	for _, in := range []string{"0%", "-5%", "%", "NaN%", "Inf%", "abc%"} {
		t.Run(in, func(t *testing.T) {
			var s SizeSpec
			assert.Error(t, s.UnmarshalText([]byte(in)))
		})
	}
}

func TestSizeSpecConstructors(t *testing.T) {
	s := Percent(25)
	f, ok := s.Fraction()
	require.True(t, ok)
	assert.InDelta(t, 0.25, f, 1e-12)
	assert.Equal(t, "25.00%", s.String())

	s = Fixed(20 * 1024)
	assert.True(t, s.IsFixed())
	assert.Equal(t, "20K", s.String())
}

func TestAlignWord(t *testing.T) {
	assert.Equal(t, Bytes(0), AlignWord(0))
	assert.Equal(t, Bytes(4), AlignWord(1))
	assert.Equal(t, Bytes(4), AlignWord(4))
	assert.Equal(t, Bytes(8), AlignWord(5))
	assert.True(t, IsWordAligned(4096))
	assert.False(t, IsWordAligned(4097))
}
