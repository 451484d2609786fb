package bnk

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpxro7/wwisecodec/hirc"
	"github.com/hpxro7/wwisecodec/util"
	"github.com/hpxro7/wwisecodec/wwise"
)

// An Option configures how a File is read and written.
type Option func(*options)

type options struct {
	log       logrus.FieldLogger
	alignment uint32
}

// WithLogger sets the logger that receives decode and layout diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithAlignment sets the byte alignment used for wems that have to be moved
// in the DATA section.
func WithAlignment(n uint32) Option {
	return func(o *options) { o.alignment = n }
}

func newOptions(opts []Option) options {
	o := options{alignment: wemAlignmentBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = wwise.NewLogger()
	}
	return o
}

// A File represents an open Wwise SoundBank.
type File struct {
	closer io.Closer
	opts   options
	// The list of sections in this SoundBank, in the order that they are expected
	// to be found in the file.
	sections          []Section
	BankHeaderSection *BankHeaderSection
	IndexSection      *DataIndexSection
	DataSection       *DataSection
	ObjectSection     *ObjectHierarchySection
	StringSection     *StringMappingSection
	EnvSection        *EnvironmentSection
	layout            LayoutReport
}

var _ wwise.Container = (*File)(nil)

// A framedSection is a section header and its body, before decoding.
type framedSection struct {
	hdr  SectionHeader
	body *wwise.Reader
}

// NewFile creates a new File for access Wwise SoundBank files. The file is
// expected to start at position 0 in the io.ReaderAt.
func NewFile(r io.ReaderAt, opts ...Option) (*File, error) {
	data, err := util.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts...)
}

// Parse decodes a SoundBank held in memory. Sections are framed in file
// order; the data index is decoded before every other section since the DATA
// section is addressed through it.
func Parse(data []byte, opts ...Option) (*File, error) {
	bnk := &File{opts: newOptions(opts)}
	log := bnk.opts.log

	var frames []framedSection
	r := wwise.NewReader(data)
	for r.Remaining() > 0 {
		hdr := SectionHeader{Identifier: r.Tag(), Length: r.U32()}
		if r.Err() != nil {
			return nil, fmt.Errorf("read section header at 0x%X: %w", r.Pos(),
				wwise.ErrTruncatedStream)
		}
		body, err := r.Sub(string(hdr.Identifier[:]), int64(hdr.Length))
		if err != nil {
			return nil, err
		}
		frames = append(frames, framedSection{hdr, body})
	}

	for _, f := range frames {
		if f.hdr.Identifier != didxHeaderId {
			continue
		}
		if bnk.IndexSection != nil {
			return nil, fmt.Errorf("%w: bank holds more than one DIDX section",
				wwise.ErrDuplicateKey)
		}
		sec, err := f.hdr.NewDataIndexSection(f.body)
		if err != nil {
			return nil, err
		}
		wwise.CheckConsumed(log, "DIDX", f.body)
		bnk.IndexSection = sec
	}

	for _, f := range frames {
		sec, err := bnk.decodeSection(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s section: %w", f.hdr.Identifier[:], err)
		}
		bnk.sections = append(bnk.sections, sec)
	}
	return bnk, nil
}

func (bnk *File) decodeSection(f framedSection) (Section, error) {
	log := bnk.opts.log
	name := string(f.hdr.Identifier[:])
	var (
		sec Section
		err error
	)
	switch f.hdr.Identifier {
	case bkhdHeaderId:
		var s *BankHeaderSection
		s, err = f.hdr.NewBankHeaderSection(f.body)
		bnk.BankHeaderSection, sec = s, s
	case didxHeaderId:
		return bnk.IndexSection, nil
	case dataHeaderId:
		var s *DataSection
		s, err = f.hdr.NewDataSection(f.body, bnk.IndexSection)
		bnk.DataSection, sec = s, s
	case hircHeaderId:
		s := f.hdr.NewObjectHierarchySection(f.body, log)
		bnk.ObjectSection, sec = s, s
	case stidHeaderId:
		var s *StringMappingSection
		s, err = f.hdr.NewStringMappingSection(f.body)
		bnk.StringSection, sec = s, s
	case envsHeaderId:
		var s *EnvironmentSection
		s, err = f.hdr.NewEnvironmentSection(f.body)
		bnk.EnvSection, sec = s, s
	default:
		log.WithField("section", name).Debug("keeping section as raw bytes")
		sec, err = f.hdr.NewUnknownSection(f.body)
	}
	if err != nil {
		return nil, err
	}
	wwise.CheckConsumed(log, name, f.body)
	return sec, nil
}

// Open opens the File at the specified path using os.Open and prepares it for
// use as a Wwise SoundBank file.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	bnk, err := NewFile(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	bnk.closer = f
	return bnk, nil
}

// Close closes the File
// If the File was created using NewFile directly instead of Open,
// Close has no effect.
func (bnk *File) Close() error {
	var err error
	if bnk.closer != nil {
		err = bnk.closer.Close()
		bnk.closer = nil
	}
	return err
}

// WriteTo writes the full contents of this File to the Writer specified by w.
// The DATA section is laid out first so that the data index records the
// final wem offsets.
func (bnk *File) WriteTo(w io.Writer) (written int64, err error) {
	if bnk.DataSection != nil {
		log := sectionLogger(bnk.opts.log, bnk.DataSection.SectionHeader)
		bnk.layout = bnk.DataSection.layout(log, bnk.opts.alignment)
	}
	for _, s := range bnk.sections {
		n, err := s.WriteTo(w)
		if err != nil {
			return written, err
		}
		written += n
	}
	return
}

// Bytes returns the encoding of this File.
func (bnk *File) Bytes() ([]byte, error) {
	b := new(bytes.Buffer)
	if _, err := bnk.WriteTo(b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Layout returns the report of the last DATA layout, made by WriteTo.
func (bnk *File) Layout() LayoutReport {
	return bnk.layout
}

// Sections returns the sections of this File in the order they are stored.
func (bnk *File) Sections() []Section {
	return bnk.sections
}

func (bnk *File) descriptor() BankDescriptor {
	if bnk.BankHeaderSection == nil {
		return BankDescriptor{}
	}
	return bnk.BankHeaderSection.Descriptor
}

func (bnk *File) BankID() uint32     { return bnk.descriptor().BankId }
func (bnk *File) Version() uint32    { return bnk.descriptor().Version }
func (bnk *File) LanguageID() uint32 { return bnk.descriptor().LanguageId }
func (bnk *File) ProjectID() uint32  { return bnk.descriptor().ProjectId }

// Valid reports whether the bank header is complete and the bank was
// generated by the supported generator version. Objects and wems of an
// invalid bank can still be read, but sizes in its HIRC are not updated.
func (bnk *File) Valid() bool {
	return bnk.BankHeaderSection != nil && bnk.BankHeaderSection.Valid()
}

// HircErr returns the error that stopped the HIRC section from being decoded,
// or nil.
func (bnk *File) HircErr() error {
	if bnk.ObjectSection == nil {
		return nil
	}
	return bnk.ObjectSection.Err()
}

// Objects returns every decoded HIRC object in the order they are stored.
func (bnk *File) Objects() []hirc.Object {
	if bnk.ObjectSection == nil {
		return nil
	}
	return bnk.ObjectSection.Objects
}

// Object returns the HIRC object with the given ID.
func (bnk *File) Object(id uint32) (hirc.Object, bool) {
	if bnk.ObjectSection == nil {
		return nil, false
	}
	return bnk.ObjectSection.Object(id)
}

// BankName returns the name the STID section records for the bank with the
// given ID.
func (bnk *File) BankName(id uint32) (string, bool) {
	if bnk.StringSection == nil {
		return "", false
	}
	return bnk.StringSection.Name(id)
}

// Wems returns the wems stored in the DATA section.
func (bnk *File) Wems() []*Wem {
	if bnk.DataSection == nil {
		return nil
	}
	return bnk.DataSection.Wems
}

func (bnk *File) wem(id uint32) (*Wem, bool) {
	if bnk.DataSection == nil {
		return nil, false
	}
	return bnk.DataSection.Wem(id)
}

// MediaIDs returns the source IDs of every wem in this SoundBank.
func (bnk *File) MediaIDs() []uint32 {
	wems := bnk.Wems()
	ids := make([]uint32, len(wems))
	for i, wem := range wems {
		ids[i] = wem.WemId
	}
	return ids
}

// ContainsMedia reports whether the wem with the given source ID is stored in
// this SoundBank.
func (bnk *File) ContainsMedia(id uint32) bool {
	_, ok := bnk.wem(id)
	return ok
}

// Media returns the contents of the wem with the given source ID.
func (bnk *File) Media(id uint32) ([]byte, error) {
	wem, ok := bnk.wem(id)
	if !ok {
		return nil, &wwise.NotFoundError{ID: uint64(id)}
	}
	return wem.Data, nil
}

// ReplaceWem replaces the contents of the wem with the given source ID. If
// updateHircSizes is set, the in-memory size that sounds and music tracks
// record for the wem is updated too, and the number of updated references is
// returned. Nothing is changed when an error is returned.
func (bnk *File) ReplaceWem(id uint32, data []byte,
	updateHircSizes bool) (int, error) {
	wem, ok := bnk.wem(id)
	if !ok {
		return 0, &wwise.NotFoundError{ID: uint64(id)}
	}
	if _, err := wwise.ValidateWem(data); err != nil {
		return 0, err
	}
	if updateHircSizes {
		if !bnk.Valid() {
			return 0, fmt.Errorf("%w: bank %d cannot have its HIRC sizes updated",
				wwise.ErrInvalidBank, bnk.BankID())
		}
		if err := bnk.HircErr(); err != nil {
			return 0, fmt.Errorf("update HIRC sizes of bank %d: %w", bnk.BankID(),
				err)
		}
	}

	wem.Data = data
	wem.Length = uint32(len(data))
	if !updateHircSizes {
		return 0, nil
	}
	patched := 0
	for _, obj := range bnk.Objects() {
		mr, ok := obj.(hirc.MediaReferrer)
		if !ok {
			continue
		}
		for _, ref := range mr.MediaRefs() {
			if ref.SourceID == id {
				ref.InMemoryMediaSize = uint32(len(data))
				patched++
			}
		}
	}
	bnk.opts.log.WithFields(logrus.Fields{
		"source":  id,
		"bank":    bnk.BankID(),
		"patched": patched,
	}).Debug("replaced wem")
	return patched, nil
}

// soundOf returns the sound that plays the wem with the given source ID.
func (bnk *File) soundOf(id uint32) (*hirc.SoundObject, bool) {
	for _, obj := range bnk.Objects() {
		if s, ok := obj.(*hirc.SoundObject); ok && s.Source.Media.SourceID == id {
			return s, true
		}
	}
	return nil, false
}

// LoopOf returns the loop value of the sound that plays the wem with the
// given source ID. Returns a default LoopValue{false, 0} if there is no such
// sound.
func (bnk *File) LoopOf(id uint32) hirc.LoopValue {
	s, ok := bnk.soundOf(id)
	if !ok {
		return hirc.LoopValue{}
	}
	return s.Loop()
}

// ReplaceLoopOf replaces the loop value of the sound that plays the wem with
// the given source ID. This method is idempotent.
func (bnk *File) ReplaceLoopOf(id uint32, loop hirc.LoopValue) error {
	s, ok := bnk.soundOf(id)
	if !ok {
		return &wwise.NotFoundError{ID: uint64(id)}
	}
	s.SetLoop(loop)
	return nil
}

func (bnk *File) String() string {
	b := new(strings.Builder)

	for _, sec := range bnk.sections {
		b.WriteString(sec.String())
	}

	tableParams := []string{"%-7", "%-15", "%-15", "%-15", "%-8", "%-12", "\n"}
	titleFmt := strings.Join(tableParams, "s|")
	wemFmt := strings.Join(tableParams, "d|")
	title := fmt.Sprintf(titleFmt,
		"Index", "Id", "Offset", "Length", "Riff", "Loop (0=Inf)")
	fmt.Fprint(b, title)
	fmt.Fprintln(b, strings.Repeat("-", len(title)-1))

	for i, wem := range bnk.Wems() {
		l := bnk.LoopOf(wem.WemId)
		loop := -1
		if l.Loops {
			loop = int(l.Value)
		}
		riff := 0
		if wem.Valid() {
			riff = 1
		}
		fmt.Fprintf(b, wemFmt, i+1, wem.WemId, wem.Offset, wem.Length, riff, loop)
	}

	return b.String()
}
