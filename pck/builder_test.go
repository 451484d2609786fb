package pck

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/hpxro7/wwisecodec/hirc"
	"github.com/hpxro7/wwisecodec/wwise"
)

const (
	langSFX     = 0
	langEnglish = 1
)

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

func section(w *wwise.Writer, id string, body []byte) {
	var tag [4]byte
	copy(tag[:], id)
	w.Tag(tag)
	w.U32(uint32(len(body)))
	w.Write(body)
}

// testBank returns a SoundBank holding the given wems, packed back to back at
// 16 byte aligned offsets, each played by a sound.
func testBank(t *testing.T, version, id uint32, wems map[uint32][]byte,
	order ...uint32) []byte {
	t.Helper()
	bkhd := wwise.NewWriter()
	bkhd.U32(version)
	bkhd.U32(id)
	bkhd.U32(0)
	bkhd.U32(0x10)
	bkhd.U32(1)

	didx := wwise.NewWriter()
	data := wwise.NewWriter()
	hircw := wwise.NewWriter()
	hircw.U32(uint32(len(order)))
	for i, src := range order {
		data.Zeros((16 - data.Len()%16) % 16)
		didx.U32(src)
		didx.U32(uint32(data.Len()))
		didx.U32(uint32(len(wems[src])))
		data.Write(wems[src])
		sound := &hirc.SoundObject{
			ObjectDescriptor: hirc.ObjectDescriptor{
				ObjectType: hirc.TypeSound,
				ObjectId:   uint32(i + 1),
			},
			Source: hirc.BankSourceData{
				PluginID: 0x00040001,
				Media: hirc.MediaInformation{
					SourceID:          src,
					InMemoryMediaSize: uint32(len(wems[src])),
				},
			},
		}
		if _, err := sound.WriteTo(hircw); err != nil {
			t.Fatal(err)
		}
	}

	out := wwise.NewWriter()
	section(out, "BKHD", bkhd.Bytes())
	section(out, "DIDX", didx.Bytes())
	section(out, "DATA", data.Bytes())
	section(out, "HIRC", hircw.Bytes())
	return out.Bytes()
}

type testFile struct {
	kind  TableKind
	key   uint64
	lang  uint32
	block uint32
	data  []byte
}

// A packageBuilder assembles a File Package byte by byte, independently of
// the encoders under test. Files are stored in the order given, each at the
// next multiple of its block size.
type packageBuilder struct {
	files      []testFile
	languages  []Language
	ascii      bool
	noExternal bool
	trailer    []byte
}

func newPackageBuilder() *packageBuilder {
	return &packageBuilder{
		languages: []Language{{langSFX, "SFX"}, {langEnglish, "English(US)"}},
	}
}

func (b *packageBuilder) languageMap(t *testing.T) []byte {
	strs := wwise.NewWriter()
	offsets := make([]uint32, len(b.languages))
	start := uint32(4 + 8*len(b.languages))
	for i, l := range b.languages {
		offsets[i] = start + uint32(strs.Len())
		if b.ascii {
			strs.WriteCString(l.Name)
		} else if err := strs.WriteWideString(l.Name); err != nil {
			t.Fatal(err)
		}
	}
	w := wwise.NewWriter()
	w.U32(uint32(len(b.languages)))
	for i, l := range b.languages {
		w.U32(offsets[i])
		w.U32(l.ID)
	}
	w.Write(strs.Bytes())
	w.Zeros((4 - w.Len()%4) % 4)
	return w.Bytes()
}

func (b *packageBuilder) build(t *testing.T) []byte {
	t.Helper()
	langs := b.languageMap(t)
	tables := make([]*wwise.Writer, 3)
	counts := make([]int, 3)
	for _, f := range b.files {
		counts[f.kind]++
	}
	for i := range tables {
		tables[i] = wwise.NewWriter()
		tables[i].U32(uint32(counts[i]))
	}
	if b.noExternal {
		tables[ExternalTable].Reset()
	}

	size := 16 + len(langs) +
		4 + ENTRY_BYTES*counts[BankTable] +
		4 + ENTRY_BYTES*counts[StreamTable]
	if !b.noExternal {
		size += 4 + 4 + EXTERNAL_ENTRY_BYTES*counts[ExternalTable]
	}

	cursor := 8 + size
	offsets := make([]int, len(b.files))
	for i, f := range b.files {
		block := int(f.block)
		cursor = (cursor + block - 1) / block * block
		offsets[i] = cursor
		cursor += len(f.data)
	}
	for i, f := range b.files {
		tw := tables[f.kind]
		if f.kind == ExternalTable {
			tw.U64(f.key)
		} else {
			tw.U32(uint32(f.key))
		}
		tw.U32(f.block)
		tw.U32(uint32(len(f.data)))
		tw.U32(uint32(offsets[i]) / f.block)
		tw.U32(f.lang)
	}

	out := wwise.NewWriter()
	out.Tag(akpkHeaderId)
	out.U32(uint32(size))
	out.U32(1)
	out.U32(uint32(len(langs)))
	out.U32(uint32(tables[BankTable].Len()))
	out.U32(uint32(tables[StreamTable].Len()))
	if !b.noExternal {
		out.U32(uint32(tables[ExternalTable].Len()))
	}
	out.Write(langs)
	for _, tw := range tables {
		out.Write(tw.Bytes())
	}
	for i, f := range b.files {
		out.Zeros(offsets[i] - out.Len())
		out.Write(f.data)
	}
	out.Write(b.trailer)
	return out.Bytes()
}

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func parse(t *testing.T, data []byte, opts ...Option) (*File, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	pck, err := NewFile(bytes.NewReader(data), append([]Option{WithLogger(log)},
		opts...)...)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return pck, hook
}
