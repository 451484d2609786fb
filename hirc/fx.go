package hirc

import (
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// An FxMedia binds a media slot of an effect plugin to a source.
type FxMedia struct {
	Index    uint8
	SourceID uint32
}

// An FxObject is an effect plugin instance, either a share set or a custom
// effect.
type FxObject struct {
	ObjectDescriptor
	PluginID uint32
	Params   []byte
	Media    []FxMedia
	RTPC     RTPCList
	// Bytes following the RTPC list, kept as read.
	Trailer []byte
}

func decodeFx(d ObjectDescriptor, r *wwise.Reader) *FxObject {
	o := &FxObject{ObjectDescriptor: d}
	o.PluginID = r.U32()
	o.Params = r.Bytes(int(r.U32()))
	n := int(r.U8())
	for i := 0; i < n && r.Err() == nil; i++ {
		o.Media = append(o.Media, FxMedia{r.U8(), r.U32()})
	}
	o.RTPC = readRTPCList(r)
	o.Trailer = r.Rest()
	return o
}

func (o *FxObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		w.U32(o.PluginID)
		w.U32(uint32(len(o.Params)))
		w.Write(o.Params)
		w.U8(uint8(len(o.Media)))
		for _, m := range o.Media {
			w.U8(m.Index)
			w.U32(m.SourceID)
		}
		o.RTPC.write(w)
		w.Write(o.Trailer)
	})
}
