// Package bnk implements access to the Wwise SoundBank file format.
package bnk

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/hpxro7/wwisecodec/wwise"
)

// The number of bytes used to describe the header of a section.
const SECTION_HEADER_BYTES = 8

// The number of bytes used to describe a single data index
// entry (an IndexEntry) within the DIDX section.
const DIDX_ENTRY_BYTES = 12

// The bank generator version this package reads and writes.
const BankGeneratorVersion = 0x71

var (
	// The identifier for the start of the BKHD (Bank Header) section.
	bkhdHeaderId = [4]byte{'B', 'K', 'H', 'D'}
	// The identifier for the start of the DIDX (Data Index) section.
	didxHeaderId = [4]byte{'D', 'I', 'D', 'X'}
	// The identifier for the start of the DATA section.
	dataHeaderId = [4]byte{'D', 'A', 'T', 'A'}
	// The identifier for the start of the HIRC (Object Hierarchy) section.
	hircHeaderId = [4]byte{'H', 'I', 'R', 'C'}
	// The identifier for the start of the STID (String Mapping) section.
	stidHeaderId = [4]byte{'S', 'T', 'I', 'D'}
	// The identifier for the start of the ENVS (Environment Settings) section.
	envsHeaderId = [4]byte{'E', 'N', 'V', 'S'}
)

// A SectionHeader represents a single Wwise SoundBank header.
type SectionHeader struct {
	Identifier [4]byte
	Length     uint32
}

func (hdr *SectionHeader) String() string {
	return fmt.Sprintf("%s: len(%d)\n", hdr.Identifier[:], hdr.Length)
}

// A Section is a single tagged region of a SoundBank.
type Section interface {
	io.WriterTo
	fmt.Stringer
	// Head returns the header of this section, as last read or written.
	Head() *SectionHeader
}

func (hdr *SectionHeader) Head() *SectionHeader { return hdr }

// writeSection writes the section header of hdr followed by the body produced
// by encode, updating the header's length.
func writeSection(w io.Writer, hdr *SectionHeader,
	encode func(*wwise.Writer)) (int64, error) {
	body := wwise.NewWriter()
	encode(body)
	hdr.Length = uint32(body.Len())

	out := wwise.NewWriter()
	out.Tag(hdr.Identifier)
	out.U32(hdr.Length)
	out.Write(body.Bytes())
	n, err := w.Write(out.Bytes())
	return int64(n), err
}

// A BankHeaderSection represents the BKHD section of a SoundBank file.
type BankHeaderSection struct {
	SectionHeader
	Descriptor BankDescriptor
	// The number of descriptor fields stored in the section.
	fields int
	// The bytes that follow the descriptor, kept as read.
	Remaining []byte
}

// A BankDescriptor provides metadata about the overall SoundBank file.
type BankDescriptor struct {
	Version    uint32
	BankId     uint32
	LanguageId uint32
	AltValues  uint32
	ProjectId  uint32
}

// The number of u32 fields of a BankDescriptor.
const bankDescriptorFields = 5

// NewBankHeaderSection reads a BKHD section body from r. A body too short to
// hold every descriptor field is kept; the bank is then reported as invalid.
func (hdr SectionHeader) NewBankHeaderSection(r *wwise.Reader) (*BankHeaderSection, error) {
	if hdr.Identifier != bkhdHeaderId {
		return nil, fmt.Errorf("expected BKHD header but got %q", hdr.Identifier[:])
	}
	sec := &BankHeaderSection{SectionHeader: hdr}
	fields := []*uint32{
		&sec.Descriptor.Version,
		&sec.Descriptor.BankId,
		&sec.Descriptor.LanguageId,
		&sec.Descriptor.AltValues,
		&sec.Descriptor.ProjectId,
	}
	for _, f := range fields {
		if r.Remaining() < 4 {
			break
		}
		*f = r.U32()
		sec.fields++
	}
	sec.Remaining = r.Rest()
	return sec, r.Err()
}

// Valid reports whether every descriptor field is present and the bank was
// generated by the supported generator version.
func (hdr *BankHeaderSection) Valid() bool {
	return hdr.fields == bankDescriptorFields &&
		hdr.Descriptor.Version == BankGeneratorVersion
}

// WriteTo writes the full contents of this BankHeaderSection to the Writer
// specified by w.
func (hdr *BankHeaderSection) WriteTo(w io.Writer) (int64, error) {
	return writeSection(w, &hdr.SectionHeader, func(w *wwise.Writer) {
		d := hdr.Descriptor
		fields := []uint32{d.Version, d.BankId, d.LanguageId, d.AltValues, d.ProjectId}
		for _, f := range fields[:hdr.fields] {
			w.U32(f)
		}
		w.Write(hdr.Remaining)
	})
}

func (hdr *BankHeaderSection) String() string {
	d := hdr.Descriptor
	return fmt.Sprintf("BKHD: len(%d) version(%d) bank(%d) language(%d) "+
		"project(%d)\n", hdr.Length, d.Version, d.BankId, d.LanguageId,
		d.ProjectId)
}

// An IndexEntry represents the location of a single wem within the SoundBank
// DATA section.
type IndexEntry struct {
	WemId uint32
	// The number of bytes from the start of the DATA section's data (after the
	// header and length) that this wem begins.
	Offset uint32
	// The length in bytes of this wem.
	Length uint32
}

// A DataIndexSection represents the DIDX section of a SoundBank file.
type DataIndexSection struct {
	SectionHeader
	// All entries, in the order they are stored. Entries are shared with the
	// DATA section, which lays them out on write.
	Entries []*IndexEntry
	// A mapping from wem ID to its entry.
	byId map[uint32]*IndexEntry
}

// NewDataIndexSection reads a DIDX section body from r. Repeated wem IDs are
// rejected.
func (hdr SectionHeader) NewDataIndexSection(r *wwise.Reader) (*DataIndexSection, error) {
	if hdr.Identifier != didxHeaderId {
		return nil, fmt.Errorf("expected DIDX header but got %q", hdr.Identifier[:])
	}
	sec := &DataIndexSection{SectionHeader: hdr, byId: make(map[uint32]*IndexEntry)}
	count := r.Len() / DIDX_ENTRY_BYTES
	for i := 0; i < count; i++ {
		e := &IndexEntry{r.U32(), r.U32(), r.U32()}
		if _, ok := sec.byId[e.WemId]; ok {
			return nil, fmt.Errorf("%w: wem %d is repeated in the DIDX",
				wwise.ErrDuplicateKey, e.WemId)
		}
		sec.Entries = append(sec.Entries, e)
		sec.byId[e.WemId] = e
	}
	return sec, r.Err()
}

// Entry returns the index entry of the wem with the given ID.
func (idx *DataIndexSection) Entry(id uint32) (*IndexEntry, bool) {
	e, ok := idx.byId[id]
	return e, ok
}

// WriteTo writes the full contents of this DataIndexSection to the Writer
// specified by w.
func (idx *DataIndexSection) WriteTo(w io.Writer) (int64, error) {
	return writeSection(w, &idx.SectionHeader, func(w *wwise.Writer) {
		for _, e := range idx.Entries {
			w.U32(e.WemId)
			w.U32(e.Offset)
			w.U32(e.Length)
		}
	})
}

func (idx *DataIndexSection) String() string {
	return fmt.Sprintf("DIDX: len(%d) wems(%d)\n", idx.Length, len(idx.Entries))
}

// A BankName maps a SoundBank ID to its name.
type BankName struct {
	BankId uint32
	Name   string
}

// A StringMappingSection represents the STID section of a SoundBank file.
type StringMappingSection struct {
	SectionHeader
	StringType uint32
	Banks      []BankName
}

// NewStringMappingSection reads a STID section body from r.
func (hdr SectionHeader) NewStringMappingSection(r *wwise.Reader) (*StringMappingSection, error) {
	sec := &StringMappingSection{SectionHeader: hdr}
	sec.StringType = r.U32()
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		sec.Banks = append(sec.Banks, BankName{r.U32(), r.String8()})
	}
	return sec, r.Err()
}

// Name returns the name of the bank with the given ID.
func (sec *StringMappingSection) Name(id uint32) (string, bool) {
	for _, b := range sec.Banks {
		if b.BankId == id {
			return b.Name, true
		}
	}
	return "", false
}

func (sec *StringMappingSection) WriteTo(w io.Writer) (int64, error) {
	return writeSection(w, &sec.SectionHeader, func(w *wwise.Writer) {
		w.U32(sec.StringType)
		w.U32(uint32(len(sec.Banks)))
		for _, b := range sec.Banks {
			w.U32(b.BankId)
			w.String8(b.Name)
		}
	})
}

func (sec *StringMappingSection) String() string {
	return fmt.Sprintf("STID: len(%d) banks(%d)\n", sec.Length, len(sec.Banks))
}

// An UnknownSection represents a section whose contents are not interpreted,
// such as STMG, FXPR and INIT. Its bytes are kept as read.
type UnknownSection struct {
	SectionHeader
	Data []byte
}

// NewUnknownSection reads the whole section body from r.
func (hdr SectionHeader) NewUnknownSection(r *wwise.Reader) (*UnknownSection, error) {
	return &UnknownSection{hdr, r.Rest()}, r.Err()
}

// WriteTo writes the full contents of this UnknownSection to the Writer
// specified by w.
func (unknown *UnknownSection) WriteTo(w io.Writer) (int64, error) {
	return writeSection(w, &unknown.SectionHeader, func(w *wwise.Writer) {
		w.Write(unknown.Data)
	})
}

// sectionLogger returns log annotated with the tag of hdr.
func sectionLogger(log logrus.FieldLogger, hdr SectionHeader) logrus.FieldLogger {
	return log.WithField("section", string(hdr.Identifier[:]))
}
