// Package wwise implements access and modification interfaces and functions
// common to the Wwise container formats.
package wwise

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// A Reader is a little-endian cursor over an in-memory region of a Wwise
// file. The first failed read is kept in Err; every read after that returns a
// zero value, so decoders can read a full record and check the error once.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader creates a Reader over all of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered by this Reader.
func (r *Reader) Err() error {
	return r.err
}

// SetErr records err unless an earlier error has already been recorded.
func (r *Reader) SetErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total size of the region this Reader covers.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of bytes that have not been consumed.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Remaining() {
		r.err = io.ErrUnexpectedEOF
		r.pos = len(r.data)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) I8() int8 {
	return int8(r.U8())
}

func (r *Reader) Bool() bool {
	return r.U8() != 0
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) I16() int16 {
	return int16(r.U16())
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

func (r *Reader) F64() float64 {
	return math.Float64frombits(r.U64())
}

// Tag reads a 4 byte identifier.
func (r *Reader) Tag() [4]byte {
	var id [4]byte
	copy(id[:], r.take(4))
	return id
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		if n == 0 && r.err == nil {
			return []byte{}
		}
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Rest returns a copy of every byte that has not been consumed.
func (r *Reader) Rest() []byte {
	return r.Bytes(r.Remaining())
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// Seek moves the cursor to an absolute position within the region.
func (r *Reader) Seek(pos int) {
	if pos < 0 || pos > len(r.data) {
		r.SetErr(io.ErrUnexpectedEOF)
		return
	}
	r.pos = pos
}

// Sub returns a Reader over the next n bytes and advances past them. If the
// region holds fewer than n bytes a StructuralError naming the region is
// returned and the cursor does not move.
func (r *Reader) Sub(name string, n int64) (*Reader, error) {
	if r.err != nil {
		return nil, r.err
	}
	if n < 0 || n > int64(r.Remaining()) {
		return nil, &StructuralError{
			Name:      name,
			Declared:  n,
			Remaining: int64(r.Remaining()),
		}
	}
	sub := &Reader{data: r.data[r.pos : r.pos+int(n)]}
	r.pos += int(n)
	return sub, nil
}

// ReadWideString reads a null-terminated UTF-16LE string.
func (r *Reader) ReadWideString() string {
	start := r.pos
	for {
		c := r.U16()
		if r.err != nil {
			return ""
		}
		if c == 0 {
			break
		}
	}
	s, err := decodeUTF16(r.data[start : r.pos-2])
	if err != nil {
		r.SetErr(err)
	}
	return s
}

// ReadCString reads a null-terminated single byte string.
func (r *Reader) ReadCString() string {
	start := r.pos
	i := bytes.IndexByte(r.data[start:], 0)
	if i < 0 {
		r.SetErr(io.ErrUnexpectedEOF)
		r.pos = len(r.data)
		return ""
	}
	r.pos += i + 1
	return string(r.data[start : start+i])
}

// String8 reads an ASCII string prefixed by a one byte length.
func (r *Reader) String8() string {
	n := r.U8()
	return string(r.take(int(n)))
}

// String32 reads a string prefixed by a four byte length.
func (r *Reader) String32() string {
	n := r.U32()
	return string(r.take(int(n)))
}

// A Writer accumulates the little-endian encoding of a Wwise record.
type Writer struct {
	bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return new(Writer)
}

func (w *Writer) U8(v uint8) {
	w.WriteByte(v)
}

func (w *Writer) I8(v int8) {
	w.WriteByte(byte(v))
}

func (w *Writer) Bool(v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

func (w *Writer) F64(v float64) {
	w.U64(math.Float64bits(v))
}

func (w *Writer) Tag(id [4]byte) {
	w.Write(id[:])
}

// Zeros writes n NUL bytes.
func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.WriteByte(0)
	}
}

// WriteWideString writes s as a null-terminated UTF-16LE string.
func (w *Writer) WriteWideString(s string) error {
	b, err := encodeUTF16(s)
	if err != nil {
		return err
	}
	w.Write(b)
	w.U16(0)
	return nil
}

// WriteCString writes s followed by a NUL byte.
func (w *Writer) WriteCString(s string) {
	w.WriteString(s)
	w.WriteByte(0)
}

// String8 writes s prefixed by a one byte length. Strings longer than 255
// bytes are truncated.
func (w *Writer) String8(s string) {
	if len(s) > math.MaxUint8 {
		s = s[:math.MaxUint8]
	}
	w.U8(uint8(len(s)))
	w.WriteString(s)
}

// String32 writes s prefixed by a four byte length.
func (w *Writer) String32(s string) {
	w.U32(uint32(len(s)))
	w.WriteString(s)
}
