package layout

import (
	"errors"
	"fmt"
)

// ErrKind classifies layout errors so callers can branch on intent rather
// than text.
type ErrKind int

const (
	ErrKindCoherence  ErrKind = iota // dangling region reference or duplicate name
	ErrKindAlignment                 // non-word-aligned value, or zero where forbidden
	ErrKindCapacity                  // fixed consumers exceed the available budget
	ErrKindConstraint                // stream buffer below the protocol minimum
)

// Sentinels matchable with errors.Is.
var (
	// ErrUnknownRegion indicates a consumer references a RAM region that
	// does not exist.
	ErrUnknownRegion = errors.New("layout: reference to unknown RAM region")

	// ErrDuplicateName indicates two entries of one collection share a name.
	ErrDuplicateName = errors.New("layout: duplicate name")

	// ErrMisaligned indicates an origin or size that is not word-aligned.
	ErrMisaligned = errors.New("layout: value is not word-aligned")

	// ErrZeroSize indicates a zero value where a non-zero size is required.
	ErrZeroSize = errors.New("layout: value must be greater than zero")

	// ErrNoSpace indicates fixed consumers or pools exceed their budget.
	ErrNoSpace = errors.New("layout: not enough space")

	// ErrStreamTooSmall indicates a stream buffer below MinStreamSize.
	ErrStreamTooSmall = errors.New("layout: stream buffer below minimum size")
)

// Error is a typed layout error. Path names the offending declaration in
// dotted notation ("ram.main.size", "heap.main.pools[0].block") so a CLI can
// print a precise, actionable message.
type Error struct {
	Kind ErrKind
	Path string
	Msg  string
	Err  error // sentinel or underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func errf(kind ErrKind, path string, sentinel error, format string, args ...any) error {
	return &Error{Kind: kind, Path: path, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}
