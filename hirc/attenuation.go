package hirc

import (
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// The number of curve slots of an attenuation.
const attenuationCurveSlots = 7

// ConeParams shape the directional attenuation cone.
type ConeParams struct {
	InsideDegrees  float32
	OutsideDegrees float32
	OutsideVolume  float32
	LoPass         float32
	HiPass         float32
}

// A ConversionTable is an attenuation curve.
type ConversionTable struct {
	Scaling uint8
	Points  []GraphPoint
}

// An AttenuationObject describes how sound changes over distance.
type AttenuationObject struct {
	ObjectDescriptor
	ConeEnabled uint8
	// Only set when the cone is enabled.
	Cone *ConeParams
	// Index into Curves for each curve slot, -1 when the slot is unused.
	CurveToUse [attenuationCurveSlots]int8
	Curves     []ConversionTable
	RTPC       RTPCList
}

func (o *AttenuationObject) IsConeEnabled() bool { return hasBit(o.ConeEnabled, 1<<0) }

func decodeAttenuation(d ObjectDescriptor, r *wwise.Reader) *AttenuationObject {
	o := &AttenuationObject{ObjectDescriptor: d}
	o.ConeEnabled = r.U8()
	if o.IsConeEnabled() {
		o.Cone = &ConeParams{r.F32(), r.F32(), r.F32(), r.F32(), r.F32()}
	}
	for i := range o.CurveToUse {
		o.CurveToUse[i] = r.I8()
	}
	n := int(r.U8())
	for i := 0; i < n && r.Err() == nil; i++ {
		c := ConversionTable{Scaling: r.U8()}
		c.Points = readGraphPoints(r, int(r.U16()))
		o.Curves = append(o.Curves, c)
	}
	o.RTPC = readRTPCList(r)
	return o
}

func (o *AttenuationObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		w.U8(o.ConeEnabled)
		if o.IsConeEnabled() {
			c := o.Cone
			if c == nil {
				c = new(ConeParams)
			}
			w.F32(c.InsideDegrees)
			w.F32(c.OutsideDegrees)
			w.F32(c.OutsideVolume)
			w.F32(c.LoPass)
			w.F32(c.HiPass)
		}
		for _, v := range o.CurveToUse {
			w.I8(v)
		}
		w.U8(uint8(len(o.Curves)))
		for _, c := range o.Curves {
			w.U8(c.Scaling)
			w.U16(uint16(len(c.Points)))
			writeGraphPoints(w, c.Points)
		}
		o.RTPC.write(w)
	})
}
