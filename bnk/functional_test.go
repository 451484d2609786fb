package bnk

// Large system tests for the bnk package, run against SoundBanks stored in
// testdata.
import (
	"io"
	"path/filepath"
	"testing"

	"github.com/hpxro7/wwisecodec/hirc"
	"github.com/hpxro7/wwisecodec/util"
	"github.com/hpxro7/wwisecodec/wwise"
)

const (
	testDir = "testdata"

	simpleSoundBank  = "simple.bnk"
	complexSoundBank = "complex.bnk"

	loopNoneSoundBank     = "loop_none.bnk"
	loop2SoundBank        = "loop_2.bnk"
	loop23SoundBank       = "loop_23.bnk"
	loopInfinitySoundBank = "loop_infinity.bnk"

	// This wem is smaller than the first wem of complexSoundBank
	smallerWem = "small.wem"
	// This wem is larger than the first wem of complexSoundBank
	largerWem = "large.wem"
)

func openBank(t *testing.T, name string) *File {
	t.Helper()
	f := util.OpenTestFile(t, filepath.Join(testDir, name))
	bnk, err := NewFile(f, WithLogger(nullLogger()))
	if err != nil {
		t.Fatal(err)
	}
	return bnk
}

func readTestWem(t *testing.T, name string) []byte {
	t.Helper()
	f := util.OpenTestFile(t, filepath.Join(testDir, name))
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestSimpleUnchangedFileIsEqual(t *testing.T) {
	unchangedFileIsEqual(t, simpleSoundBank)
}

func TestComplexUnchangedFileIsEqual(t *testing.T) {
	unchangedFileIsEqual(t, complexSoundBank)
}

func unchangedFileIsEqual(t *testing.T, name string) {
	f := util.OpenTestFile(t, filepath.Join(testDir, name))
	bnk, err := NewFile(f, WithLogger(nullLogger()))
	if err != nil {
		t.Fatal(err)
	}
	wwise.AssertContainerEqualToFile(t, f, bnk)
	if err := bnk.HircErr(); err != nil {
		t.Errorf("HIRC of %s was not decoded: %v", name, err)
	}
}

func TestUnchangedWriteFileTwiceIsEqual(t *testing.T) {
	f := util.OpenTestFile(t, filepath.Join(testDir, complexSoundBank))
	bnk, err := NewFile(f, WithLogger(nullLogger()))
	if err != nil {
		t.Fatal(err)
	}
	wwise.AssertContainerEqualToFile(t, f, bnk)
	wwise.AssertContainerEqualToFile(t, f, bnk)
}

func TestReplaceFirstWemWithSmaller(t *testing.T) {
	assertReplacedFileCorrectness(t, complexSoundBank, readTestWem(t, smallerWem))
}

func TestReplaceFirstWemWithLarger(t *testing.T) {
	assertReplacedFileCorrectness(t, complexSoundBank, readTestWem(t, largerWem))
}

func TestReplaceLoopOfCases(t *testing.T) {
	type loopCase struct {
		input      string
		loopChange hirc.LoopValue
		expected   string
	}

	inputs := []string{loop2SoundBank, loopNoneSoundBank, loopInfinitySoundBank}
	var cases []loopCase

	for _, input := range inputs {
		cases = append(cases,
			loopCase{input, hirc.LoopValue{}, loopNoneSoundBank})
		cases = append(cases,
			loopCase{input, hirc.LoopValue{Loops: true, Value: 23}, loop23SoundBank})
		cases = append(cases,
			loopCase{input, hirc.LoopValue{Loops: true}, loopInfinitySoundBank})
		cases = append(cases,
			loopCase{input, hirc.LoopValue{Loops: true, Value: 2}, loop2SoundBank})
	}

	for _, c := range cases {
		bnk := openBank(t, c.input)
		id := bnk.MediaIDs()[0]
		if err := bnk.ReplaceLoopOf(id, c.loopChange); err != nil {
			t.Fatal(err)
		}
		expect := util.OpenTestFile(t, filepath.Join(testDir, c.expected))
		wwise.AssertContainerEqualToFile(t, expect, bnk)
	}
}

func assertReplacedFileCorrectness(t *testing.T, name string, data []byte) {
	t.Helper()
	bnk := openBank(t, name)
	id := bnk.MediaIDs()[0]
	if _, err := bnk.ReplaceWem(id, data, true); err != nil {
		t.Fatal(err)
	}
	replaced, err := Parse(mustBytes(t, bnk), WithLogger(nullLogger()))
	if err != nil {
		t.Fatal(err)
	}
	assertSizesConsistent(t, replaced, id, len(data))

	end := uint32(0)
	for i, wem := range replaced.Wems() {
		if wem.Offset < end {
			t.Errorf("The wem at index %d starts at 0x%X, inside the previous wem",
				i, wem.Offset)
		}
		end = wem.Offset + wem.Length
	}
	for _, o := range bnk.Layout().Overlaps {
		if o.Offset%wemAlignmentBytes != 0 {
			t.Errorf("wem %d was moved to 0x%X, which is not byte aligned by %d",
				o.WemId, o.Offset, wemAlignmentBytes)
		}
	}
	expectedLength := end + uint32(len(replaced.DataSection.Trailer))
	if replaced.DataSection.Length != expectedLength {
		t.Errorf("The wems and trailer span %d bytes, but the data section header "+
			"reports %d bytes", expectedLength, replaced.DataSection.Length)
	}
}
