package util

import (
	"os"
	"testing"
)

func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping large file comparison test.")
	}
}

// OpenTestFile opens the file at path for a large file test, skipping the test
// when running in short mode or when the file is not present.
func OpenTestFile(t *testing.T, path string) *os.File {
	t.Helper()
	SkipIfShort(t)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		t.Skipf("Skipping test, %s is not present.", path)
	}
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
