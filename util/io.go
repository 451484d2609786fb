package util

import (
	"io"
	"io/fs"
	"math"
)

// A SizeReaderAt is a ReaderAt that knows its length, such as
// *io.SectionReader and *bytes.Reader.
type SizeReaderAt interface {
	io.ReaderAt
	Size() int64
}

// Size returns the length of r if it can be known without reading it. Regular
// files are sized with Stat.
func Size(r io.ReaderAt) (int64, bool) {
	switch s := r.(type) {
	case SizeReaderAt:
		return s.Size(), true
	case interface{ Stat() (fs.FileInfo, error) }:
		fi, err := s.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return 0, false
		}
		return fi.Size(), true
	}
	return 0, false
}

// ReadAll reads r from offset 0 until its end.
func ReadAll(r io.ReaderAt) ([]byte, error) {
	n, ok := Size(r)
	if !ok {
		return io.ReadAll(io.NewSectionReader(r, 0, math.MaxInt64))
	}
	data := make([]byte, n)
	if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return data, nil
}

// A utility ReaderAt that emits an infinite stream of a specific value.
type InfiniteReaderAt struct {
	// The value that this padding writer will write.
	Value byte
}

// ReadAt fills all of len(p) bytes with the Value of this InfiniteReaderAt.
func (r *InfiniteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	for i := range p {
		p[i] = r.Value
	}
	return len(p), nil
}

// ZeroReaderAt emits an infinite stream of NUL bytes, the padding between
// entries of Wwise containers.
var ZeroReaderAt io.ReaderAt = &InfiniteReaderAt{0}

// Pad writes n NUL bytes to w.
func Pad(w io.Writer, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	return io.Copy(w, io.NewSectionReader(ZeroReaderAt, 0, n))
}
