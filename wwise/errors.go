package wwise

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedStream is matched by every StructuralError.
	ErrTruncatedStream = errors.New("truncated stream")
	// ErrUnsupportedType is matched by every UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported HIRC type")
	// ErrHashMismatch is matched by every HashMismatchError.
	ErrHashMismatch = errors.New("cue name does not match its index")
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")

	ErrReferenceNotFound = errors.New("reference not found")
	ErrInvalidBank       = errors.New("soundbank header is invalid")
	ErrDuplicateKey      = errors.New("duplicate lookup table key")
	ErrInvalidWem        = errors.New("media is not a RIFF wem")
	ErrCorruptTree       = errors.New("corrupt decision tree")
)

// A StructuralError reports a region whose declared size exceeds the bytes
// left in its stream.
type StructuralError struct {
	Name      string
	Declared  int64
	Remaining int64
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s declares %d bytes but only %d remain",
		e.Name, e.Declared, e.Remaining)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrTruncatedStream
}

// A SizeMismatch describes a decoded region whose cursor did not stop at its
// declared end. A negative Delta is an underrun, a positive Delta an overrun.
type SizeMismatch struct {
	Name  string
	Delta int
}

func (e *SizeMismatch) Error() string {
	kind := "underrun"
	n := -e.Delta
	if e.Delta > 0 {
		kind = "overrun"
		n = e.Delta
	}
	return fmt.Sprintf("%s: %s of %d bytes", e.Name, kind, n)
}

// An UnsupportedTypeError is returned for a HIRC object whose type tag has no
// decoder.
type UnsupportedTypeError struct {
	Type uint8
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unsupported HIRC type 0x%02X", e.Type)
	}
	return fmt.Sprintf("unsupported HIRC type %s (0x%02X)", e.Name, e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// A HashMismatchError is returned when a cue table row's stored index is not
// the hash of its name.
type HashMismatchError struct {
	Line     int
	Name     string
	Stored   uint32
	Computed uint32
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("line %d: cue %q has index %d but hashes to %d",
		e.Line, e.Name, e.Stored, e.Computed)
}

func (e *HashMismatchError) Is(target error) bool {
	return target == ErrHashMismatch
}

// A NotFoundError is returned when a media replacement target is absent from
// every loaded file.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("wem %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
