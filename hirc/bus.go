package hirc

import (
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// A DuckInfo describes a bus ducked while the owning bus plays.
type DuckInfo struct {
	BusID       uint32
	DuckVolume  float32
	FadeOutTime int32
	FadeInTime  int32
	FadeCurve   uint8
	TargetProp  uint8
}

// BusFxChain is the effect list of a bus, followed by its mixer plugin.
type BusFxChain struct {
	Bypass          uint8
	Effects         []Effect
	MixerID         uint32
	MixerIsShareSet bool
}

func readBusFxChain(r *wwise.Reader) BusFxChain {
	var c BusFxChain
	n := int(r.U8())
	if n > 0 {
		c.Bypass = r.U8()
		c.Effects = readEffects(r, n)
	}
	c.MixerID = r.U32()
	c.MixerIsShareSet = r.Bool()
	return c
}

func (c *BusFxChain) write(w *wwise.Writer) {
	w.U8(uint8(len(c.Effects)))
	if len(c.Effects) > 0 {
		w.U8(c.Bypass)
		writeEffects(w, c.Effects)
	}
	w.U32(c.MixerID)
	w.Bool(c.MixerIsShareSet)
}

const (
	busKillNewest         = 1 << 0
	busUseVirtualBehavior = 1 << 1

	busIsHdrBus                  = 1 << 0
	busHdrReleaseModeExponential = 1 << 1
)

// A BusObject represents an audio bus, or a feedback bus.
type BusObject struct {
	ObjectDescriptor
	OverrideBusID  uint32
	Props          PropBundle
	Bits           uint8
	MaxNumInstance uint16
	ChannelConfig  uint32
	HdrBits        uint8
	RecoveryTime   int32
	MaxDuckVolume  float32
	Ducks          []DuckInfo
	Fx             BusFxChain
	RTPC           RTPCList
	States         StateChunk
}

func (o *BusObject) KillNewest() bool         { return hasBit(o.Bits, busKillNewest) }
func (o *BusObject) UseVirtualBehavior() bool { return hasBit(o.Bits, busUseVirtualBehavior) }
func (o *BusObject) IsHdrBus() bool           { return hasBit(o.HdrBits, busIsHdrBus) }
func (o *BusObject) HdrReleaseModeExponential() bool {
	return hasBit(o.HdrBits, busHdrReleaseModeExponential)
}

func decodeBus(d ObjectDescriptor, r *wwise.Reader) *BusObject {
	o := &BusObject{ObjectDescriptor: d}
	o.OverrideBusID = r.U32()
	o.Props = readPropBundle(r)
	o.Bits = r.U8()
	o.MaxNumInstance = r.U16()
	o.ChannelConfig = r.U32()
	o.HdrBits = r.U8()
	o.RecoveryTime = r.I32()
	o.MaxDuckVolume = r.F32()
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		o.Ducks = append(o.Ducks, DuckInfo{
			BusID:       r.U32(),
			DuckVolume:  r.F32(),
			FadeOutTime: r.I32(),
			FadeInTime:  r.I32(),
			FadeCurve:   r.U8(),
			TargetProp:  r.U8(),
		})
	}
	o.Fx = readBusFxChain(r)
	o.RTPC = readRTPCList(r)
	o.States = readStateChunk(r)
	return o
}

func (o *BusObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		w.U32(o.OverrideBusID)
		o.Props.write(w)
		w.U8(o.Bits)
		w.U16(o.MaxNumInstance)
		w.U32(o.ChannelConfig)
		w.U8(o.HdrBits)
		w.I32(o.RecoveryTime)
		w.F32(o.MaxDuckVolume)
		w.U32(uint32(len(o.Ducks)))
		for _, d := range o.Ducks {
			w.U32(d.BusID)
			w.F32(d.DuckVolume)
			w.I32(d.FadeOutTime)
			w.I32(d.FadeInTime)
			w.U8(d.FadeCurve)
			w.U8(d.TargetProp)
		}
		o.Fx.write(w)
		o.RTPC.write(w)
		o.States.write(w)
	})
}
