package bnk

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/hpxro7/wwisecodec/hirc"
	"github.com/hpxro7/wwisecodec/wwise"
)

// An ObjectHierarchySection represents the HIRC section of a SoundBank file.
type ObjectHierarchySection struct {
	SectionHeader
	// All objects, in the order they are stored.
	Objects []hirc.Object
	// A mapping from object ID to object, rebuilt whenever Objects changes.
	byId map[uint32]hirc.Object
	// The section body, kept when it could not be decoded.
	raw []byte
	err error
}

// NewObjectHierarchySection reads a HIRC section body from r. If an object
// cannot be decoded, the section keeps its bytes as read and reports the
// failure through Err, so the rest of the bank remains usable.
func (hdr SectionHeader) NewObjectHierarchySection(r *wwise.Reader,
	log logrus.FieldLogger) *ObjectHierarchySection {
	sec := &ObjectHierarchySection{SectionHeader: hdr}
	body := r.Rest()
	or := wwise.NewReader(body)
	count := int(or.U32())
	for i := 0; i < count; i++ {
		obj, err := hirc.Decode(or, log)
		if err != nil {
			sec.fail(body, fmt.Errorf("object %d of %d: %w", i, count, err), log)
			return sec
		}
		log.WithFields(logrus.Fields{
			"object": obj.ID(),
			"type":   obj.Type().String(),
		}).Debug("decoded object")
		sec.Objects = append(sec.Objects, obj)
	}
	if or.Err() != nil {
		sec.fail(body, or.Err(), log)
		return sec
	}
	wwise.CheckConsumed(log, "HIRC", or)
	sec.buildIndex()
	return sec
}

func (sec *ObjectHierarchySection) fail(body []byte, err error,
	log logrus.FieldLogger) {
	log.WithError(err).Warn("HIRC section could not be decoded and is kept " +
		"as raw bytes")
	sec.Objects = nil
	sec.raw = body
	sec.err = err
	sec.byId = make(map[uint32]hirc.Object)
}

func (sec *ObjectHierarchySection) buildIndex() {
	sec.byId = make(map[uint32]hirc.Object, len(sec.Objects))
	for _, obj := range sec.Objects {
		sec.byId[obj.ID()] = obj
	}
}

// Err returns the error that stopped this section from being decoded.
func (sec *ObjectHierarchySection) Err() error {
	return sec.err
}

// Object returns the object with the given ID.
func (sec *ObjectHierarchySection) Object(id uint32) (hirc.Object, bool) {
	obj, ok := sec.byId[id]
	return obj, ok
}

// Append adds obj to the end of the hierarchy.
func (sec *ObjectHierarchySection) Append(obj hirc.Object) error {
	if sec.err != nil {
		return fmt.Errorf("HIRC section is not decoded: %w", sec.err)
	}
	if _, ok := sec.byId[obj.ID()]; ok {
		return fmt.Errorf("%w: object %d already exists", wwise.ErrDuplicateKey,
			obj.ID())
	}
	sec.Objects = append(sec.Objects, obj)
	sec.buildIndex()
	return nil
}

// Remove deletes the object with the given ID, reporting whether it existed.
func (sec *ObjectHierarchySection) Remove(id uint32) bool {
	for i, obj := range sec.Objects {
		if obj.ID() == id {
			sec.Objects = append(sec.Objects[:i], sec.Objects[i+1:]...)
			sec.buildIndex()
			return true
		}
	}
	return false
}

// WriteTo writes the full contents of this ObjectHierarchySection to the
// Writer specified by w.
func (sec *ObjectHierarchySection) WriteTo(w io.Writer) (int64, error) {
	if sec.err != nil {
		return writeSection(w, &sec.SectionHeader, func(w *wwise.Writer) {
			w.Write(sec.raw)
		})
	}
	var err error
	n, werr := writeSection(w, &sec.SectionHeader, func(w *wwise.Writer) {
		w.U32(uint32(len(sec.Objects)))
		for _, obj := range sec.Objects {
			if _, err = obj.WriteTo(w); err != nil {
				return
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return n, werr
}

func (sec *ObjectHierarchySection) String() string {
	if sec.err != nil {
		return fmt.Sprintf("HIRC: len(%d) undecoded: %v\n", sec.Length, sec.err)
	}
	return fmt.Sprintf("HIRC: len(%d) objects(%d)\n", sec.Length,
		len(sec.Objects))
}
