// Package pck implements access to the Wwise File Package file format.
package pck

import (
	"fmt"

	"github.com/hpxro7/wwisecodec/wwise"
)

// The number of bytes before the size fields of a package header: the
// identifier and the header size.
const PACKAGE_PREFIX_BYTES = 8

// The identifier for the start of a File Package.
var akpkHeaderId = [4]byte{'A', 'K', 'P', 'K'}

// A Header represents the header of a Wwise File Package.
type Header struct {
	Identifier [4]byte
	// The number of bytes that follow this field up to the end of the last
	// lookup table.
	HeaderSize        uint32
	Version           uint32
	LanguageMapSize   uint32
	BankTableSize     uint32
	StreamTableSize   uint32
	ExternalTableSize uint32
	// Whether the header stores the size of an external file table. Older
	// packages only hold bank and stream tables.
	HasExternals bool
}

// readHeader reads the fixed fields of a header from the header body r. The
// external table size is read only if the header size accounts for it.
func readHeader(id [4]byte, size uint32, r *wwise.Reader) (Header, error) {
	hdr := Header{Identifier: id, HeaderSize: size}
	hdr.Version = r.U32()
	hdr.LanguageMapSize = r.U32()
	hdr.BankTableSize = r.U32()
	hdr.StreamTableSize = r.U32()
	base := uint64(16) + uint64(hdr.LanguageMapSize) +
		uint64(hdr.BankTableSize) + uint64(hdr.StreamTableSize)
	if uint64(size) != base {
		hdr.ExternalTableSize = r.U32()
		hdr.HasExternals = true
		if base+4+uint64(hdr.ExternalTableSize) != uint64(size) {
			return hdr, fmt.Errorf("AKPK header declares %d bytes but its "+
				"tables hold %d", size, base+4+uint64(hdr.ExternalTableSize))
		}
	}
	return hdr, r.Err()
}

func (hdr *Header) write(w *wwise.Writer) {
	w.Tag(hdr.Identifier)
	w.U32(hdr.HeaderSize)
	w.U32(hdr.Version)
	w.U32(hdr.LanguageMapSize)
	w.U32(hdr.BankTableSize)
	w.U32(hdr.StreamTableSize)
	if hdr.HasExternals {
		w.U32(hdr.ExternalTableSize)
	}
}

// resize recomputes the header size from the table sizes.
func (hdr *Header) resize() {
	size := 16 + hdr.LanguageMapSize + hdr.BankTableSize + hdr.StreamTableSize
	if hdr.HasExternals {
		size += 4 + hdr.ExternalTableSize
	}
	hdr.HeaderSize = size
}

func (hdr *Header) String() string {
	return fmt.Sprintf("%s: len(%d) version(%d) languages(%d) banks(%d) "+
		"streams(%d) externals(%d)\n", hdr.Identifier[:], hdr.HeaderSize,
		hdr.Version, hdr.LanguageMapSize, hdr.BankTableSize, hdr.StreamTableSize,
		hdr.ExternalTableSize)
}

// A Language is a single entry of the language map.
type Language struct {
	ID   uint32
	Name string
}

// A LanguageMap names the languages that package entries are localized to.
type LanguageMap struct {
	Languages []Language
	// Whether names are stored as UTF-16LE rather than single byte strings.
	Wide   bool
	byId   map[uint32]string
	byName map[string]uint32
	// The map as read. Names are not editable, so it is written verbatim.
	raw []byte
}

// readLanguageMap reads a language map: a count, (string offset, ID) pairs and
// the strings they point to. Offsets are relative to the start of the map.
func readLanguageMap(raw []byte) (*LanguageMap, error) {
	m := &LanguageMap{
		raw:    raw,
		byId:   make(map[uint32]string),
		byName: make(map[string]uint32),
	}
	if len(raw) == 0 {
		return m, nil
	}
	r := wwise.NewReader(raw)
	count := int(r.U32())
	if count*8 > r.Remaining() {
		return nil, &wwise.StructuralError{
			Name:      "language map",
			Declared:  int64(count) * 8,
			Remaining: int64(r.Remaining()),
		}
	}
	offsets := make([]uint32, count)
	ids := make([]uint32, count)
	for i := range offsets {
		offsets[i] = r.U32()
		ids[i] = r.U32()
	}
	if count > 0 {
		first := int(offsets[0])
		m.Wide = first+1 < len(raw) && raw[first+1] == 0
	}
	for i, off := range offsets {
		r.Seek(int(off))
		var name string
		if m.Wide {
			name = r.ReadWideString()
		} else {
			name = r.ReadCString()
		}
		if r.Err() != nil {
			return nil, fmt.Errorf("language %d: %w", ids[i], r.Err())
		}
		m.Languages = append(m.Languages, Language{ids[i], name})
		m.byId[ids[i]] = name
		m.byName[name] = ids[i]
	}
	return m, nil
}

// Name returns the name of the language with the given ID.
func (m *LanguageMap) Name(id uint32) (string, bool) {
	name, ok := m.byId[id]
	return name, ok
}

// ID returns the ID of the language with the given name.
func (m *LanguageMap) ID(name string) (uint32, bool) {
	id, ok := m.byName[name]
	return id, ok
}

func (m *LanguageMap) write(w *wwise.Writer) {
	w.Write(m.raw)
}
