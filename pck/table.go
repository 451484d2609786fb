package pck

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/hpxro7/wwisecodec/bnk"
	"github.com/hpxro7/wwisecodec/wwise"
)

// The number of bytes used to describe an entry of a bank or stream table.
const ENTRY_BYTES = 20

// The number of bytes used to describe an entry of the external file table,
// which is keyed by a 64 bit ID.
const EXTERNAL_ENTRY_BYTES = 24

// A TableKind identifies one of the lookup tables of a package.
type TableKind int

const (
	BankTable TableKind = iota
	StreamTable
	ExternalTable
)

func (k TableKind) String() string {
	switch k {
	case BankTable:
		return "Bank"
	case StreamTable:
		return "Stream"
	case ExternalTable:
		return "External"
	}
	return fmt.Sprintf("TableKind(%d)", int(k))
}

func (k TableKind) entryBytes() int {
	if k == ExternalTable {
		return EXTERNAL_ENTRY_BYTES
	}
	return ENTRY_BYTES
}

// An Entry is a single file stored in a package: a SoundBank, a streamed wem or
// an external file.
type Entry struct {
	Kind TableKind
	// The bank ID, wem source ID or external file ID of this entry.
	Key        uint64
	BlockSize  uint32
	Length     uint32
	StartBlock uint32
	LanguageID uint32

	src io.ReaderAt
	// The position of the entry's data in src, which layout does not move.
	srcOffset int64
	mu        sync.Mutex
	// The contents of this entry, read on first access or set by a
	// replacement.
	data []byte
	// The parsed SoundBank of a bank entry, cached on first access.
	bank *bnk.File
}

// Offset returns the absolute position of this entry's data in the package.
// Start blocks count from the start of the file, header included.
func (e *Entry) Offset() int64 {
	return int64(e.StartBlock) * int64(e.BlockSize)
}

// Data returns the contents of this entry, reading them from the package on
// first access.
func (e *Entry) Data() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dataLocked()
}

func (e *Entry) dataLocked() ([]byte, error) {
	if e.data != nil || e.Length == 0 {
		return e.data, nil
	}
	data := make([]byte, e.Length)
	if _, err := e.src.ReadAt(data, e.srcOffset); err != nil {
		return nil, fmt.Errorf("read %s entry %d: %w", e.Kind, e.Key, err)
	}
	e.data = data
	return data, nil
}

// SetData replaces the contents of this entry. A cached SoundBank is dropped.
func (e *Entry) SetData(data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = data
	e.Length = uint32(len(data))
	e.bank = nil
}

// setBank stores the encoding of the modified SoundBank b as the contents of
// this entry, keeping b cached.
func (e *Entry) setBank(b *bnk.File) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = data
	e.Length = uint32(len(data))
	e.bank = b
	return nil
}

// syncBank re-encodes the cached SoundBank, if any, so that changes made
// through the File returned by SoundBank are part of the entry's contents.
func (e *Entry) syncBank() error {
	e.mu.Lock()
	b := e.bank
	e.mu.Unlock()
	if b == nil {
		return nil
	}
	return e.setBank(b)
}

// reader returns a reader over the contents of this entry without loading them
// into memory if they have not been read yet.
func (e *Entry) reader() io.Reader {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.data != nil {
		return bytes.NewReader(e.data)
	}
	return io.NewSectionReader(e.src, e.srcOffset, int64(e.Length))
}

func (e *Entry) write(w *wwise.Writer) {
	if e.Kind == ExternalTable {
		w.U64(e.Key)
	} else {
		w.U32(uint32(e.Key))
	}
	w.U32(e.BlockSize)
	w.U32(e.Length)
	w.U32(e.StartBlock)
	w.U32(e.LanguageID)
}

// A tableKey identifies an entry within its table. A file localized to several
// languages is stored once per language under the same key.
type tableKey struct {
	key  uint64
	lang uint32
}

// A LookupTable maps keys to the entries of one kind. Entries keep the order
// they are stored in.
type LookupTable struct {
	Kind    TableKind
	Entries []*Entry
	byKey   map[tableKey]*Entry
	first   map[uint64]*Entry
	// Whether the table was stored without even a count.
	omitted bool
}

// readTable reads a lookup table: a count followed by fixed size entries. A
// key that appears twice for the same language is rejected.
func readTable(kind TableKind, r *wwise.Reader, src io.ReaderAt) (*LookupTable, error) {
	t := &LookupTable{
		Kind:  kind,
		byKey: make(map[tableKey]*Entry),
		first: make(map[uint64]*Entry),
	}
	if r.Len() == 0 {
		t.omitted = true
		return t, nil
	}
	count := int(r.U32())
	if n := int64(count) * int64(kind.entryBytes()); n > int64(r.Remaining()) {
		return nil, &wwise.StructuralError{
			Name:      fmt.Sprintf("%s table", kind),
			Declared:  n,
			Remaining: int64(r.Remaining()),
		}
	}
	for i := 0; i < count; i++ {
		e := &Entry{Kind: kind, src: src}
		if kind == ExternalTable {
			e.Key = r.U64()
		} else {
			e.Key = uint64(r.U32())
		}
		e.BlockSize = r.U32()
		e.Length = r.U32()
		e.StartBlock = r.U32()
		e.LanguageID = r.U32()
		e.srcOffset = e.Offset()
		k := tableKey{e.Key, e.LanguageID}
		if _, ok := t.byKey[k]; ok {
			return nil, fmt.Errorf("%w: %s table repeats key %d for language %d",
				wwise.ErrDuplicateKey, kind, e.Key, e.LanguageID)
		}
		t.Entries = append(t.Entries, e)
		t.byKey[k] = e
		if _, ok := t.first[e.Key]; !ok {
			t.first[e.Key] = e
		}
	}
	return t, r.Err()
}

// Entry returns the first entry with the given key, whatever its language.
func (t *LookupTable) Entry(key uint64) (*Entry, bool) {
	e, ok := t.first[key]
	return e, ok
}

// Localized returns the entry with the given key for the given language.
func (t *LookupTable) Localized(key uint64, lang uint32) (*Entry, bool) {
	e, ok := t.byKey[tableKey{key, lang}]
	return e, ok
}

// All returns every entry with the given key, in table order.
func (t *LookupTable) All(key uint64) []*Entry {
	var entries []*Entry
	for _, e := range t.Entries {
		if e.Key == key {
			entries = append(entries, e)
		}
	}
	return entries
}

// size returns the number of bytes this table is encoded in.
func (t *LookupTable) size() uint32 {
	if t.omitted && len(t.Entries) == 0 {
		return 0
	}
	return uint32(4 + len(t.Entries)*t.Kind.entryBytes())
}

func (t *LookupTable) write(w *wwise.Writer) {
	if t.size() == 0 {
		return
	}
	w.U32(uint32(len(t.Entries)))
	for _, e := range t.Entries {
		e.write(w)
	}
}
