package wwise

import (
	"bytes"
	"fmt"
	"hash/fnv"

	"github.com/go-audio/riff"
)

// WemInfo describes the RIFF header of a wem payload.
type WemInfo struct {
	// The size recorded in the RIFF header, excluding the first 8 bytes.
	Size   uint32
	Format [4]byte
}

// HasRiffMagic reports whether data starts with the RIFF magic.
func HasRiffMagic(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], riff.RiffID[:])
}

// ValidateWem parses the RIFF header of data, returning ErrInvalidWem if data
// is not a RIFF/WAVE stream.
func ValidateWem(data []byte) (*WemInfo, error) {
	if !HasRiffMagic(data) {
		return nil, ErrInvalidWem
	}
	p := riff.New(bytes.NewReader(data))
	if err := p.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWem, err)
	}
	return &WemInfo{Size: p.Size, Format: p.Format}, nil
}

// CueHash returns the FNV-1a 32 bit hash of name, which is the index of the
// event named by that cue.
func CueHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}
