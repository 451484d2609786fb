package bnk

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hpxro7/wwisecodec/util"
	"github.com/hpxro7/wwisecodec/wwise"
)

// The default wem byte alignment used when a wem has to be moved.
const wemAlignmentBytes = 16

// A Wem represents a single sound entity contained within a SoundBank file.
type Wem struct {
	*IndexEntry
	Data []byte
}

// Valid reports whether the wem starts with the RIFF magic.
func (wem *Wem) Valid() bool {
	return wwise.HasRiffMagic(wem.Data)
}

// A DataSection represents the DATA section of a SoundBank file.
type DataSection struct {
	SectionHeader
	// Wems in the order of the data index.
	Wems []*Wem
	// The bytes that follow the end of the last wem, kept as read.
	Trailer []byte
	byId    map[uint32]*Wem
}

// NewDataSection reads a DATA section body from r. idx specifies where each
// wem is stored, relative to the start of the body; it may be nil for a bank
// without a data index, in which case the whole body is kept as the trailer.
func (hdr SectionHeader) NewDataSection(r *wwise.Reader,
	idx *DataIndexSection) (*DataSection, error) {
	if hdr.Identifier != dataHeaderId {
		return nil, fmt.Errorf("expected DATA header but got %q", hdr.Identifier[:])
	}
	sec := &DataSection{SectionHeader: hdr, byId: make(map[uint32]*Wem)}
	end := 0
	if idx != nil {
		for _, e := range idx.Entries {
			name := fmt.Sprintf("wem %d", e.WemId)
			if int(e.Offset) > r.Len() {
				return nil, &wwise.StructuralError{
					Name:      name,
					Declared:  int64(e.Offset) + int64(e.Length),
					Remaining: int64(r.Len()),
				}
			}
			r.Seek(int(e.Offset))
			wr, err := r.Sub(name, int64(e.Length))
			if err != nil {
				return nil, err
			}
			wem := &Wem{e, wr.Rest()}
			sec.Wems = append(sec.Wems, wem)
			sec.byId[e.WemId] = wem
			if stop := int(e.Offset + e.Length); stop > end {
				end = stop
			}
		}
	}
	r.Seek(end)
	sec.Trailer = r.Rest()
	return sec, r.Err()
}

// Wem returns the wem with the given source ID.
func (data *DataSection) Wem(id uint32) (*Wem, bool) {
	wem, ok := data.byId[id]
	return wem, ok
}

// An Overlap records a wem that no longer fits before its original offset and
// had to be moved.
type Overlap struct {
	WemId          uint32
	OriginalOffset uint32
	Offset         uint32
}

// A LayoutReport describes the outcome of laying out a DATA section.
type LayoutReport struct {
	Overlaps []Overlap
}

// Aligned reports whether every wem kept its original offset.
func (r LayoutReport) Aligned() bool {
	return len(r.Overlaps) == 0
}

func alignUp(n, alignment uint32) uint32 {
	if alignment <= 1 {
		return n
	}
	return (n + alignment - 1) / alignment * alignment
}

// byOffset returns the wems in the order they are stored in the section.
func (data *DataSection) byOffset() []*Wem {
	wems := append([]*Wem(nil), data.Wems...)
	sort.SliceStable(wems, func(i, j int) bool {
		return wems[i].Offset < wems[j].Offset
	})
	return wems
}

// layout recomputes the offset and length of every wem from its current data.
// Wems are visited in offset order, whatever the order of the index. A wem is
// placed at its original offset when the previous wems end before it;
// otherwise it is moved to the next aligned offset and every later wem is
// shifted by the same amount. Moves are logged and reported.
func (data *DataSection) layout(log logrus.FieldLogger, alignment uint32) LayoutReport {
	var report LayoutReport
	cursor := uint32(0)
	wems := data.byOffset()
	for i, wem := range wems {
		if cursor > wem.Offset {
			moved := alignUp(cursor, alignment)
			shift := moved - wem.Offset
			o := Overlap{wem.WemId, wem.Offset, moved}
			log.WithFields(logrus.Fields{
				"id":     wem.WemId,
				"offset": wem.Offset,
			}).Warnf("wem %d overlaps the previous wem and was moved to 0x%X; "+
				"original alignment is lost", wem.WemId, moved)
			report.Overlaps = append(report.Overlaps, o)
			for _, later := range wems[i:] {
				later.Offset += shift
			}
		}
		wem.Length = uint32(len(wem.Data))
		cursor = wem.Offset + wem.Length
	}
	return report
}

// WriteTo writes the full contents of this DataSection to the Writer specified
// by w. Gaps between wems are zero filled. The section must have been laid
// out, as File.WriteTo does.
func (data *DataSection) WriteTo(w io.Writer) (int64, error) {
	return writeSection(w, &data.SectionHeader, func(w *wwise.Writer) {
		for _, wem := range data.byOffset() {
			if gap := int64(wem.Offset) - int64(w.Len()); gap > 0 {
				util.Pad(w, gap)
			}
			w.Write(wem.Data)
		}
		w.Write(data.Trailer)
	})
}

func (data *DataSection) String() string {
	return fmt.Sprintf("DATA: len(%d) wems(%d)\n", data.Length, len(data.Wems))
}
