package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// sizeless hides the Size method of a reader.
type sizeless struct{ r *bytes.Reader }

func (s sizeless) ReadAt(p []byte, off int64) (int, error) { return s.r.ReadAt(p, off) }

func TestReadAll(t *testing.T) {
	want := []byte("AKPK and BKHD")
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, want, 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if n, ok := Size(f); !ok || n != int64(len(want)) {
		t.Errorf("Size of file = %d, %v", n, ok)
	}
	if _, ok := Size(sizeless{bytes.NewReader(want)}); ok {
		t.Errorf("reader without a size was sized")
	}
	for name, r := range map[string]interface {
		ReadAt([]byte, int64) (int, error)
	}{
		"file":     f,
		"bytes":    bytes.NewReader(want),
		"sizeless": sizeless{bytes.NewReader(want)},
	} {
		got, err := ReadAll(r)
		if err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s: got %q", name, got)
		}
	}
}

func TestPad(t *testing.T) {
	var b bytes.Buffer
	b.WriteByte(1)
	n, err := Pad(&b, 5)
	if err != nil || n != 5 {
		t.Fatalf("Pad wrote %d, %v", n, err)
	}
	if !bytes.Equal(b.Bytes(), []byte{1, 0, 0, 0, 0, 0}) {
		t.Errorf("got %v", b.Bytes())
	}
	if n, _ := Pad(&b, -1); n != 0 {
		t.Errorf("negative padding wrote %d bytes", n)
	}
}
