package wwise

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestReaderPrimitives(t *testing.T) {
	w := NewWriter()
	w.U8(0xAB)
	w.U16(0x1234)
	w.U32(0xDEADBEEF)
	w.U64(0x0102030405060708)
	w.F32(1.5)
	w.F64(-2.25)
	w.I16(-3)
	w.String8("bank")
	w.String32("marker")

	r := NewReader(w.Bytes())
	if got := r.U8(); got != 0xAB {
		t.Errorf("U8: got 0x%X", got)
	}
	if got := r.U16(); got != 0x1234 {
		t.Errorf("U16: got 0x%X", got)
	}
	if got := r.U32(); got != 0xDEADBEEF {
		t.Errorf("U32: got 0x%X", got)
	}
	if got := r.U64(); got != 0x0102030405060708 {
		t.Errorf("U64: got 0x%X", got)
	}
	if got := r.F32(); got != 1.5 {
		t.Errorf("F32: got %v", got)
	}
	if got := r.F64(); got != -2.25 {
		t.Errorf("F64: got %v", got)
	}
	if got := r.I16(); got != -3 {
		t.Errorf("I16: got %v", got)
	}
	if got := r.String8(); got != "bank" {
		t.Errorf("String8: got %q", got)
	}
	if got := r.String32(); got != "marker" {
		t.Errorf("String32: got %q", got)
	}
	if r.Err() != nil || r.Remaining() != 0 {
		t.Errorf("expected clean end, got err=%v remaining=%d", r.Err(), r.Remaining())
	}
}

func TestReaderStickyError(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if got := r.U32(); got != 0 {
		t.Errorf("short read returned %d", got)
	}
	if !errors.Is(r.Err(), io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", r.Err())
	}
	if got := r.U8(); got != 0 {
		t.Errorf("read after failure returned %d", got)
	}
}

func TestSubRejectsTruncation(t *testing.T) {
	r := NewReader(make([]byte, 10))
	r.Skip(4)
	_, err := r.Sub("DATA", 7)
	if !errors.Is(err, ErrTruncatedStream) {
		t.Fatalf("expected truncated stream, got %v", err)
	}
	var se *StructuralError
	if !errors.As(err, &se) || se.Declared != 7 || se.Remaining != 6 {
		t.Errorf("unexpected error detail: %+v", se)
	}
	if r.Pos() != 4 {
		t.Errorf("cursor moved to %d", r.Pos())
	}

	sub, err := r.Sub("DATA", 6)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 6 || r.Remaining() != 0 {
		t.Errorf("sub len %d, parent remaining %d", sub.Len(), r.Remaining())
	}
}

func TestWideStringRoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.WriteWideString("english(us)"); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 2*len("english(us)")+2 {
		t.Fatalf("unexpected encoded length %d", w.Len())
	}
	r := NewReader(w.Bytes())
	if got := r.ReadWideString(); got != "english(us)" {
		t.Errorf("got %q", got)
	}
}

func TestCheckConsumed(t *testing.T) {
	log, hook := test.NewNullLogger()

	r := NewReader(make([]byte, 8))
	r.Skip(8)
	if m := CheckConsumed(log, "BKHD", r); m != nil {
		t.Errorf("unexpected mismatch %v", m)
	}

	r = NewReader(make([]byte, 8))
	r.Skip(5)
	m := CheckConsumed(log, "BKHD", r)
	if m == nil || m.Delta != -3 {
		t.Fatalf("expected underrun of 3, got %+v", m)
	}
	if len(hook.AllEntries()) != 1 {
		t.Errorf("expected one diagnostic, got %d", len(hook.AllEntries()))
	}
	if hook.LastEntry().Data["section"] != "BKHD" {
		t.Errorf("diagnostic missing section field: %v", hook.LastEntry().Data)
	}
}

func TestValidateWem(t *testing.T) {
	wem := []byte("RIFF\x04\x00\x00\x00WAVE")
	info, err := ValidateWem(wem)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 4 || string(info.Format[:]) != "WAVE" {
		t.Errorf("unexpected info %+v", info)
	}
	if _, err := ValidateWem([]byte("OggS....")); !errors.Is(err, ErrInvalidWem) {
		t.Errorf("expected ErrInvalidWem, got %v", err)
	}
}

func TestCueHash(t *testing.T) {
	// FNV-1a 32 of the empty string is the offset basis.
	if got := CueHash(""); got != 0x811C9DC5 {
		t.Errorf("got 0x%X", got)
	}
	if got := CueHash("a"); got != 0xE40C292C {
		t.Errorf("got 0x%X", got)
	}
}
