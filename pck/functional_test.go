package pck

// Large system tests for the pck package, run against File Packages stored in
// testdata.
import (
	"path/filepath"
	"testing"

	"github.com/hpxro7/wwisecodec/util"
	"github.com/hpxro7/wwisecodec/wwise"
)

const (
	testDir = "testdata"

	simpleFilePackage = "simple.pck"
)

func TestSimpleUnchangedFileIsEqual(t *testing.T) {
	unchangedFileIsEqual(t, simpleFilePackage)
}

func unchangedFileIsEqual(t *testing.T, name string) {
	f := util.OpenTestFile(t, filepath.Join(testDir, name))
	pck, err := NewFile(f, WithLogger(nullLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pck.SoundBanks(); err != nil {
		t.Errorf("banks of %s could not be parsed: %v", name, err)
	}
	wwise.AssertContainerEqualToFile(t, f, pck)
}
