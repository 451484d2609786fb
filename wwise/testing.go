package wwise

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// AssertContainerEqualToFile checks that writing ctn reproduces the contents
// of the file f byte for byte.
func AssertContainerEqualToFile(t *testing.T, f *os.File, ctn io.WriterTo) {
	t.Helper()
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	expected, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	AssertContainerEqualToBytes(t, expected, ctn)
}

// AssertContainerEqualToBytes checks that writing ctn reproduces expected
// byte for byte, reporting the first differing offset otherwise.
func AssertContainerEqualToBytes(t *testing.T, expected []byte, ctn io.WriterTo) {
	t.Helper()
	actual := new(bytes.Buffer)
	total, err := ctn.WriteTo(actual)
	if err != nil {
		t.Fatal(err)
	}
	actualTotal := int64(actual.Len())
	if total != actualTotal {
		t.Fatalf("%d bytes were actually written, but %d bytes were "+
			"reported to be written", actualTotal, total)
	}
	if total != int64(len(expected)) {
		t.Fatalf("The number of bytes written was %d bytes, but %d bytes "+
			"were expected", total, len(expected))
	}
	bs := actual.Bytes()
	for i := range bs {
		if bs[i] != expected[i] {
			t.Fatalf("The two files have the same size but differ at offset "+
				"0x%X: got 0x%02X, want 0x%02X", i, bs[i], expected[i])
		}
	}
}
