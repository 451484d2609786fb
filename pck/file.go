package pck

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hpxro7/wwisecodec/bnk"
	"github.com/hpxro7/wwisecodec/util"
	"github.com/hpxro7/wwisecodec/wwise"
)

// An Option configures how a File is read.
type Option func(*options)

type options struct {
	log     logrus.FieldLogger
	workers int
}

// WithLogger sets the logger that receives decode and layout diagnostics. The
// SoundBanks of the package log through it too.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithWorkers sets the maximum number of SoundBanks parsed at once by
// SoundBanks.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func newOptions(opts []Option) options {
	o := options{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = wwise.NewLogger()
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

// A File represents an open Wwise File Package.
type File struct {
	closer    io.Closer
	opts      options
	Header    Header
	Languages *LanguageMap
	Banks     *LookupTable
	Streams   *LookupTable
	Externals *LookupTable
	// Bytes that follow the last entry, kept as read.
	trailer []byte
}

var _ wwise.Container = (*File)(nil)

// NewFile creates a new File for access Wwise File Package files. The file is
// expected to start at position 0 in the io.ReaderAt. Entry contents are read
// from r on first access, so r must stay open for as long as the File is used.
func NewFile(r io.ReaderAt, opts ...Option) (*File, error) {
	pck := &File{opts: newOptions(opts)}
	log := pck.opts.log

	prefix := make([]byte, PACKAGE_PREFIX_BYTES)
	if n, _ := r.ReadAt(prefix, 0); n < len(prefix) {
		return nil, &wwise.StructuralError{
			Name:      "AKPK header",
			Declared:  PACKAGE_PREFIX_BYTES,
			Remaining: int64(n),
		}
	}
	pr := wwise.NewReader(prefix)
	id, size := pr.Tag(), pr.U32()
	if id != akpkHeaderId {
		return nil, fmt.Errorf("expected AKPK header but got %q", id[:])
	}
	body := make([]byte, size)
	if n, _ := r.ReadAt(body, PACKAGE_PREFIX_BYTES); n < len(body) {
		return nil, &wwise.StructuralError{
			Name:      "AKPK header",
			Declared:  int64(size),
			Remaining: int64(n),
		}
	}

	hr := wwise.NewReader(body)
	hdr, err := readHeader(id, size, hr)
	if err != nil {
		return nil, err
	}
	pck.Header = hdr

	lr, err := hr.Sub("language map", int64(hdr.LanguageMapSize))
	if err != nil {
		return nil, err
	}
	if pck.Languages, err = readLanguageMap(lr.Rest()); err != nil {
		return nil, fmt.Errorf("read language map: %w", err)
	}

	tables := []struct {
		kind TableKind
		size uint32
		dst  **LookupTable
	}{
		{BankTable, hdr.BankTableSize, &pck.Banks},
		{StreamTable, hdr.StreamTableSize, &pck.Streams},
		{ExternalTable, hdr.ExternalTableSize, &pck.Externals},
	}
	for _, t := range tables {
		name := fmt.Sprintf("%s table", t.kind)
		tr, err := hr.Sub(name, int64(t.size))
		if err != nil {
			return nil, err
		}
		if *t.dst, err = readTable(t.kind, tr, r); err != nil {
			return nil, err
		}
		wwise.CheckConsumed(log, name, tr)
	}
	wwise.CheckConsumed(log, "AKPK header", hr)

	end := int64(PACKAGE_PREFIX_BYTES) + int64(size)
	for _, e := range pck.Entries() {
		if stop := e.Offset() + int64(e.Length); stop > end {
			end = stop
		}
	}
	if n, ok := util.Size(r); ok && n > end {
		pck.trailer = make([]byte, n-end)
		if _, err := r.ReadAt(pck.trailer, end); err != nil {
			return nil, fmt.Errorf("read package trailer: %w", err)
		}
	}
	return pck, nil
}

// Open opens the File at the specified path using os.Open and prepares it for
// use as a Wwise File Package file.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	pck, err := NewFile(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	pck.closer = f
	return pck, nil
}

// Close closes the File
// If the File was created using NewFile directly instead of Open,
// Close has no effect.
func (pck *File) Close() error {
	var err error
	if pck.closer != nil {
		err = pck.closer.Close()
		pck.closer = nil
	}
	return err
}

// Entries returns every entry of the package: banks, then streams, then
// external files, each in table order.
func (pck *File) Entries() []*Entry {
	var entries []*Entry
	for _, t := range []*LookupTable{pck.Banks, pck.Streams, pck.Externals} {
		entries = append(entries, t.Entries...)
	}
	return entries
}

// LanguageName returns the name of the language with the given ID.
func (pck *File) LanguageName(id uint32) (string, bool) {
	return pck.Languages.Name(id)
}

// LanguageID returns the ID of the language with the given name.
func (pck *File) LanguageID(name string) (uint32, bool) {
	return pck.Languages.ID(name)
}

// SoundBank parses the SoundBank stored in the bank entry e. The result is
// cached, so later calls return the same File, and changes made to it are
// written by WriteTo.
func (pck *File) SoundBank(e *Entry) (*bnk.File, error) {
	if e.Kind != BankTable {
		return nil, fmt.Errorf("%s entry %d is not a SoundBank", e.Kind, e.Key)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bank != nil {
		return e.bank, nil
	}
	data, err := e.dataLocked()
	if err != nil {
		return nil, err
	}
	log := pck.opts.log.WithField("bank", e.Key)
	b, err := bnk.Parse(data, bnk.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("parse bank %d: %w", e.Key, err)
	}
	e.bank = b
	return b, nil
}

// SoundBanks parses every SoundBank of the package concurrently, returning
// them in table order.
func (pck *File) SoundBanks() ([]*bnk.File, error) {
	banks := make([]*bnk.File, len(pck.Banks.Entries))
	var g errgroup.Group
	g.SetLimit(pck.opts.workers)
	for i, e := range pck.Banks.Entries {
		i, e := i, e
		g.Go(func() error {
			b, err := pck.SoundBank(e)
			banks[i] = b
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return banks, nil
}

// BankLookup returns a function that finds a SoundBank of this package by
// bank ID. When a bank is stored for several languages, the one localized to
// lang is preferred; otherwise the first in table order is used. Banks that
// cannot be parsed are reported as absent.
func (pck *File) BankLookup(lang uint32) func(id uint32) *bnk.File {
	return func(id uint32) *bnk.File {
		e, ok := pck.Banks.Localized(uint64(id), lang)
		if !ok {
			e, ok = pck.Banks.Entry(uint64(id))
		}
		if !ok {
			return nil
		}
		b, err := pck.SoundBank(e)
		if err != nil {
			pck.opts.log.WithError(err).WithField("bank", id).
				Warn("bank could not be parsed")
			return nil
		}
		return b
	}
}

// eachBank calls fn with every SoundBank that can be parsed, in table order.
// Banks that fail to parse are logged and skipped.
func (pck *File) eachBank(fn func(e *Entry, b *bnk.File) error) error {
	for _, e := range pck.Banks.Entries {
		b, err := pck.SoundBank(e)
		if err != nil {
			pck.opts.log.WithError(err).WithField("bank", e.Key).
				Warn("skipping bank that could not be parsed")
			continue
		}
		if err := fn(e, b); err != nil {
			return err
		}
	}
	return nil
}

// MediaIDs returns the source IDs of every streamed wem, followed by those of
// every wem embedded in a SoundBank. IDs are not repeated.
func (pck *File) MediaIDs() []uint32 {
	seen := make(map[uint32]bool)
	var ids []uint32
	add := func(id uint32) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range pck.Streams.Entries {
		add(uint32(e.Key))
	}
	pck.eachBank(func(_ *Entry, b *bnk.File) error {
		for _, id := range b.MediaIDs() {
			add(id)
		}
		return nil
	})
	return ids
}

// ContainsMedia reports whether the wem with the given source ID is streamed
// by or embedded in this package.
func (pck *File) ContainsMedia(id uint32) bool {
	_, err := pck.FindWem(id)
	return err == nil
}

// Media returns the contents of the wem with the given source ID.
func (pck *File) Media(id uint32) ([]byte, error) {
	return pck.FindWem(id)
}

// FindWem returns the contents of the wem with the given source ID, looking in
// the stream table first and then in every SoundBank.
func (pck *File) FindWem(id uint32) ([]byte, error) {
	if e, ok := pck.Streams.Entry(uint64(id)); ok {
		return e.Data()
	}
	for _, e := range pck.Banks.Entries {
		b, err := pck.SoundBank(e)
		if err != nil {
			pck.opts.log.WithError(err).WithField("bank", e.Key).
				Warn("skipping bank that could not be parsed")
			continue
		}
		if data, err := b.Media(id); err == nil {
			return data, nil
		}
	}
	return nil, &wwise.NotFoundError{ID: uint64(id)}
}

// A WemReplacementResult describes where a wem was replaced.
type WemReplacementResult struct {
	SourceID uint32
	// Whether the wem was a streamed file of the package.
	StreamReplaced bool
	// The IDs of the SoundBanks that embed the wem.
	BanksTouched []uint32
	// The number of HIRC media references updated across those banks.
	HircPatches int
}

// ReplaceWem replaces the contents of the wem with the given source ID. A
// streamed wem is replaced directly. Otherwise every SoundBank embedding the
// wem is updated, and if updateHircSizes is set so are the sizes its HIRC
// records for the wem. Nothing is changed when an error is returned.
func (pck *File) ReplaceWem(id uint32, data []byte,
	updateHircSizes bool) (WemReplacementResult, error) {
	result := WemReplacementResult{SourceID: id}
	if _, err := wwise.ValidateWem(data); err != nil {
		return result, err
	}
	if streams := pck.Streams.All(uint64(id)); len(streams) > 0 {
		for _, e := range streams {
			e.SetData(data)
		}
		result.StreamReplaced = true
		pck.opts.log.WithFields(logrus.Fields{
			"source":    id,
			"languages": len(streams),
		}).Debug("replaced streamed wem")
		return result, nil
	}

	type target struct {
		e *Entry
		b *bnk.File
	}
	var targets []target
	err := pck.eachBank(func(e *Entry, b *bnk.File) error {
		if !b.ContainsMedia(id) {
			return nil
		}
		if updateHircSizes && !b.Valid() {
			return fmt.Errorf("%w: bank %d cannot have its HIRC sizes updated",
				wwise.ErrInvalidBank, e.Key)
		}
		if updateHircSizes && b.HircErr() != nil {
			return fmt.Errorf("update HIRC sizes of bank %d: %w", e.Key,
				b.HircErr())
		}
		targets = append(targets, target{e, b})
		return nil
	})
	if err != nil {
		return result, err
	}
	if len(targets) == 0 {
		return result, &wwise.NotFoundError{ID: uint64(id)}
	}

	for _, t := range targets {
		n, err := t.b.ReplaceWem(id, data, updateHircSizes)
		if err != nil {
			return result, fmt.Errorf("bank %d: %w", t.e.Key, err)
		}
		if err := t.e.setBank(t.b); err != nil {
			return result, fmt.Errorf("encode bank %d: %w", t.e.Key, err)
		}
		result.BanksTouched = append(result.BanksTouched, uint32(t.e.Key))
		result.HircPatches += n
	}
	pck.opts.log.WithFields(logrus.Fields{
		"source":  id,
		"banks":   len(result.BanksTouched),
		"patched": result.HircPatches,
	}).Debug("replaced embedded wem")
	return result, nil
}

// A placement is the position an entry is written at.
type placement struct {
	e      *Entry
	offset int64
}

// layout assigns every entry its final position. Entries are visited in the
// order of their current offsets; an entry keeps its offset when the entries
// before it end before it, and is otherwise moved to the next multiple of its
// block size. Lengths are taken from the current contents.
func (pck *File) layout() []placement {
	entries := pck.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Offset() < entries[j].Offset()
	})
	cursor := int64(PACKAGE_PREFIX_BYTES) + int64(pck.Header.HeaderSize)
	plan := make([]placement, 0, len(entries))
	for _, e := range entries {
		offset := e.Offset()
		if offset < cursor {
			block := int64(e.BlockSize)
			if block == 0 {
				block = 1
				e.BlockSize = 1
			}
			moved := (cursor + block - 1) / block * block
			pck.opts.log.WithFields(logrus.Fields{
				"id":     e.Key,
				"offset": offset,
			}).Debugf("%s entry %d moved to 0x%X", e.Kind, e.Key, moved)
			e.StartBlock = uint32(moved / block)
			offset = moved
		}
		plan = append(plan, placement{e, offset})
		cursor = offset + int64(e.Length)
	}
	return plan
}

// WriteTo writes the full contents of this File to the Writer specified by w.
// The header and lookup tables are rewritten with the final entry positions
// and lengths, and gaps between entries are zero filled.
func (pck *File) WriteTo(w io.Writer) (written int64, err error) {
	for _, e := range pck.Banks.Entries {
		if err := e.syncBank(); err != nil {
			return 0, fmt.Errorf("encode bank %d: %w", e.Key, err)
		}
	}
	pck.Header.BankTableSize = pck.Banks.size()
	pck.Header.StreamTableSize = pck.Streams.size()
	pck.Header.ExternalTableSize = pck.Externals.size()
	pck.Header.LanguageMapSize = uint32(len(pck.Languages.raw))
	pck.Header.resize()
	plan := pck.layout()

	hw := wwise.NewWriter()
	pck.Header.write(hw)
	pck.Languages.write(hw)
	pck.Banks.write(hw)
	pck.Streams.write(hw)
	pck.Externals.write(hw)
	n, err := hw.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}

	for _, p := range plan {
		if gap := p.offset - written; gap > 0 {
			n, err := util.Pad(w, gap)
			written += n
			if err != nil {
				return written, err
			}
		}
		n, err := io.Copy(w, p.e.reader())
		written += n
		if err != nil {
			return written, err
		}
	}
	m, err := w.Write(pck.trailer)
	written += int64(m)
	return written, err
}

func (pck *File) String() string {
	b := new(strings.Builder)
	b.WriteString(pck.Header.String())
	for _, l := range pck.Languages.Languages {
		fmt.Fprintf(b, "Language %d: %s\n", l.ID, l.Name)
	}

	tableParams := []string{"%-9", "%-7", "%-21", "%-10", "%-15", "%-15", "\n"}
	titleFmt := strings.Join(tableParams, "s|")
	entryFmt := strings.Join(tableParams[:2], "s|") + "d|" +
		strings.Join(tableParams[2:], "d|")
	title := fmt.Sprintf(titleFmt,
		"Table", "Index", "Id", "Language", "Offset", "Length")
	fmt.Fprint(b, title)
	fmt.Fprintln(b, strings.Repeat("-", len(title)-1))

	for _, t := range []*LookupTable{pck.Banks, pck.Streams, pck.Externals} {
		for i, e := range t.Entries {
			fmt.Fprintf(b, entryFmt, t.Kind.String(), i+1, e.Key, e.LanguageID,
				e.Offset(), e.Length)
		}
	}
	return b.String()
}
