package bnk

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/hpxro7/wwisecodec/hirc"
	"github.com/hpxro7/wwisecodec/wwise"
)

const testBankId = 0xB0

// testWem returns a RIFF wem of n bytes, n >= 12, filled with fill.
func testWem(n int, fill byte) []byte {
	w := wwise.NewWriter()
	w.Tag([4]byte{'R', 'I', 'F', 'F'})
	w.U32(uint32(n - 8))
	w.Tag([4]byte{'W', 'A', 'V', 'E'})
	for w.Len() < n {
		w.U8(fill)
	}
	return w.Bytes()
}

type testEntry struct {
	id     uint32
	offset uint32
	data   []byte
}

// A bankBuilder assembles a SoundBank byte by byte, independently of the
// section encoders under test.
type bankBuilder struct {
	version  uint32
	entries  []testEntry
	trailer  []byte
	objects  []hirc.Object
	rawHirc  []byte
	noHeader bool
	envs     bool
}

func newBankBuilder() *bankBuilder {
	return &bankBuilder{version: BankGeneratorVersion}
}

func section(w *wwise.Writer, id string, body []byte) {
	var tag [4]byte
	copy(tag[:], id)
	w.Tag(tag)
	w.U32(uint32(len(body)))
	w.Write(body)
}

func (b *bankBuilder) build(t *testing.T) []byte {
	t.Helper()
	out := wwise.NewWriter()
	if !b.noHeader {
		bkhd := wwise.NewWriter()
		bkhd.U32(b.version)
		bkhd.U32(testBankId)
		bkhd.U32(0)
		bkhd.U32(0x10)
		bkhd.U32(1)
		bkhd.Zeros(4)
		section(out, "BKHD", bkhd.Bytes())
	}

	if len(b.entries) > 0 {
		didx := wwise.NewWriter()
		end := 0
		for _, e := range b.entries {
			didx.U32(e.id)
			didx.U32(e.offset)
			didx.U32(uint32(len(e.data)))
			if stop := int(e.offset) + len(e.data); stop > end {
				end = stop
			}
		}
		data := make([]byte, end, end+len(b.trailer))
		for _, e := range b.entries {
			copy(data[e.offset:], e.data)
		}
		data = append(data, b.trailer...)
		section(out, "DIDX", didx.Bytes())
		section(out, "DATA", data)
	}

	hircBody := b.rawHirc
	if hircBody == nil {
		w := wwise.NewWriter()
		w.U32(uint32(len(b.objects)))
		for _, obj := range b.objects {
			if _, err := obj.WriteTo(w); err != nil {
				t.Fatal(err)
			}
		}
		hircBody = w.Bytes()
	}
	section(out, "HIRC", hircBody)

	stid := wwise.NewWriter()
	stid.U32(1)
	stid.U32(1)
	stid.U32(testBankId)
	stid.String8("Voices")
	section(out, "STID", stid.Bytes())
	section(out, "STMG", []byte{1, 2, 3, 4, 5, 6})
	if b.envs {
		section(out, "ENVS", envsBody())
	}
	return out.Bytes()
}

// envsBody returns an obstruction curve of two points, a disabled occlusion
// curve without points and two trailing bytes.
func envsBody() []byte {
	w := wwise.NewWriter()
	w.Bool(true)
	w.U8(2)
	w.U16(2)
	w.F32(0)
	w.F32(-6)
	w.U32(4)
	w.F32(100)
	w.F32(-96)
	w.U32(4)
	w.Bool(false)
	w.U8(0)
	w.U16(0)
	w.Write([]byte{0xEE, 0xFF})
	return w.Bytes()
}

func sound(id, source uint32, size uint32) *hirc.SoundObject {
	return &hirc.SoundObject{
		ObjectDescriptor: hirc.ObjectDescriptor{
			ObjectType: hirc.TypeSound,
			ObjectId:   id,
		},
		Source: hirc.BankSourceData{
			PluginID: 0x00040001,
			Media: hirc.MediaInformation{
				SourceID:          source,
				InMemoryMediaSize: size,
			},
		},
	}
}

func track(id, source uint32, size uint32) *hirc.MusicTrackObject {
	return &hirc.MusicTrackObject{
		ObjectDescriptor: hirc.ObjectDescriptor{
			ObjectType: hirc.TypeMusicTrack,
			ObjectId:   id,
		},
		Sources: []hirc.BankSourceData{{
			PluginID: 0x00040001,
			Media: hirc.MediaInformation{
				SourceID:          source,
				InMemoryMediaSize: size,
			},
		}},
	}
}

// standardBank holds two wems, each played by a sound, and a music track
// sharing the first wem.
func standardBank() *bankBuilder {
	b := newBankBuilder()
	b.entries = []testEntry{
		{100, 0, testWem(40, 0xAA)},
		{200, 48, testWem(30, 0xBB)},
	}
	b.trailer = []byte{0, 0}
	b.objects = []hirc.Object{
		sound(1, 100, 40),
		sound(2, 200, 30),
		track(3, 100, 40),
	}
	return b
}

func parse(t *testing.T, data []byte) (*File, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	bnk, err := Parse(data, WithLogger(log))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return bnk, hook
}

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func warnings(hook *test.Hook) []*logrus.Entry {
	var entries []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.WarnLevel {
			entries = append(entries, e)
		}
	}
	return entries
}
