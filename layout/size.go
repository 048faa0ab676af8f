package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WordSize is the alignment unit for every address and size in a layout.
// All origins and non-zero sizes must be multiples of this.
const WordSize = 4

const (
	kib = 1024
	mib = 1024 * 1024
)

// AlignWord returns n aligned up to the next word boundary.
//
// Example:
//
//	AlignWord(1) = 4
//	AlignWord(4) = 4
//	AlignWord(5) = 8
func AlignWord(n Bytes) Bytes {
	if n%WordSize > 0 {
		n += WordSize - n%WordSize
	}
	return n
}

// IsWordAligned reports whether n is a multiple of the word size.
func IsWordAligned(n uint32) bool {
	return n%WordSize == 0
}

// Bytes is a fixed byte count. Its textual forms follow linker-script
// conventions: plain decimal, "<n>K" (x1024), "<n>M" (x1048576), hexadecimal
// with a 0x prefix, and octal with a leading zero.
type Bytes uint32

// ParseBytes parses a fixed size value from its textual form.
func ParseBytes(s string) (Bytes, error) {
	str := s
	mult := uint64(1)
	switch {
	case strings.HasSuffix(str, "M"):
		mult = mib
		str = str[:len(str)-1]
	case strings.HasSuffix(str, "K"):
		mult = kib
		str = str[:len(str)-1]
	}
	base := 10
	switch {
	case strings.HasPrefix(str, "0x"), strings.HasPrefix(str, "0X"):
		base = 16
		str = str[2:]
	case strings.HasPrefix(str, "0") && len(str) > 1:
		base = 8
		str = str[1:]
	}
	value, err := strconv.ParseUint(str, base, 32)
	if err != nil {
		return 0, fmt.Errorf("layout: invalid memory size %q: %w", s, err)
	}
	value *= mult
	if value > math.MaxUint32 {
		return 0, fmt.Errorf("layout: memory size %q overflows 32 bits", s)
	}
	return Bytes(value), nil
}

// String returns the canonical representation: the smallest suffix that
// represents the value exactly ("4K", not "4096"), or plain decimal.
func (b Bytes) String() string {
	switch {
	case b > 0 && b%mib == 0:
		return fmt.Sprintf("%dM", b/mib)
	case b > 0 && b%kib == 0:
		return fmt.Sprintf("%dK", b/kib)
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bytes) UnmarshalText(text []byte) error {
	value, err := ParseBytes(string(text))
	if err != nil {
		return err
	}
	*b = value
	return nil
}

// Addr is a 32-bit device address. It parses with the same literal forms as
// Bytes and renders canonically as zero-padded hexadecimal.
type Addr uint32

// ParseAddr parses an address value from its textual form.
func ParseAddr(s string) (Addr, error) {
	value, err := ParseBytes(s)
	return Addr(value), err
}

// String returns the canonical "0x%08x" representation.
func (a Addr) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Addr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Addr) UnmarshalText(text []byte) error {
	value, err := ParseAddr(string(text))
	if err != nil {
		return err
	}
	*a = value
	return nil
}

// SizeSpec is a possibly flexible memory size: either a fixed byte count or
// a fraction of a budget computed at calculation time. Flexible values are
// written as "NN%" and are never absolute.
type SizeSpec struct {
	fixed    Bytes
	fraction float64
	flexible bool
}

// Fixed returns a SizeSpec holding a fixed byte count.
func Fixed(n Bytes) SizeSpec {
	return SizeSpec{fixed: n}
}

// Percent returns a flexible SizeSpec; p is a percentage, so Percent(25)
// denotes a quarter of the group's remaining budget.
func Percent(p float64) SizeSpec {
	return SizeSpec{fraction: p / 100, flexible: true}
}

// IsFixed reports whether the size is a fixed byte count.
func (s SizeSpec) IsFixed() bool { return !s.flexible }

// IsFlexible reports whether the size is a proportional share.
func (s SizeSpec) IsFlexible() bool { return s.flexible }

// FixedSize returns the fixed byte count, if any.
func (s SizeSpec) FixedSize() (Bytes, bool) {
	if s.flexible {
		return 0, false
	}
	return s.fixed, true
}

// Fraction returns the proportional share as a fraction, if any.
func (s SizeSpec) Fraction() (float64, bool) {
	if !s.flexible {
		return 0, false
	}
	return s.fraction, true
}

// String returns the canonical representation: the Bytes form for fixed
// values, "NN.NN%" for flexible ones.
func (s SizeSpec) String() string {
	if s.flexible {
		return fmt.Sprintf("%.2f%%", s.fraction*100)
	}
	return s.fixed.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s SizeSpec) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SizeSpec) UnmarshalText(text []byte) error {
	str := string(text)
	if strings.HasSuffix(str, "%") {
		value, err := strconv.ParseFloat(str[:len(str)-1], 64)
		if err != nil {
			return fmt.Errorf("layout: invalid relative memory size %q: %w", str, err)
		}
		if value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
			return fmt.Errorf("layout: invalid relative memory size: %v", value)
		}
		*s = SizeSpec{fraction: value / 100, flexible: true}
		return nil
	}
	value, err := ParseBytes(str)
	if err != nil {
		return err
	}
	*s = SizeSpec{fixed: value}
	return nil
}
