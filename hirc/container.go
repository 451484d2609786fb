package hirc

import (
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// A PlaylistEntry is a child of a random/sequence container playlist.
type PlaylistEntry struct {
	PlayID uint32
	Weight int32
}

const (
	rsUsingWeight         = 1 << 0
	rsResetPlayListAtPlay = 1 << 1
	rsRestartBackward     = 1 << 2
	rsContinuous          = 1 << 3
	rsGlobal              = 1 << 4
)

// A RanSeqCntrObject plays its children randomly or in sequence.
type RanSeqCntrObject struct {
	ObjectDescriptor
	Base                 NodeBaseParams
	LoopCount            uint16
	LoopModMin           uint16
	LoopModMax           uint16
	TransitionTime       float32
	TransitionTimeModMin float32
	TransitionTimeModMax float32
	AvoidRepeatCount     uint16
	TransitionMode       uint8
	RandomMode           uint8
	Mode                 uint8
	Bits                 uint8
	Children             Children
	Playlist             []PlaylistEntry
}

func (o *RanSeqCntrObject) UsingWeight() bool { return hasBit(o.Bits, rsUsingWeight) }
func (o *RanSeqCntrObject) ResetPlayListAtEachPlay() bool {
	return hasBit(o.Bits, rsResetPlayListAtPlay)
}
func (o *RanSeqCntrObject) RestartBackward() bool { return hasBit(o.Bits, rsRestartBackward) }
func (o *RanSeqCntrObject) Continuous() bool      { return hasBit(o.Bits, rsContinuous) }
func (o *RanSeqCntrObject) Global() bool          { return hasBit(o.Bits, rsGlobal) }

func decodeRanSeqCntr(d ObjectDescriptor, r *wwise.Reader) *RanSeqCntrObject {
	o := &RanSeqCntrObject{ObjectDescriptor: d}
	o.Base = readNodeBaseParams(r)
	o.LoopCount = r.U16()
	o.LoopModMin = r.U16()
	o.LoopModMax = r.U16()
	o.TransitionTime = r.F32()
	o.TransitionTimeModMin = r.F32()
	o.TransitionTimeModMax = r.F32()
	o.AvoidRepeatCount = r.U16()
	o.TransitionMode = r.U8()
	o.RandomMode = r.U8()
	o.Mode = r.U8()
	o.Bits = r.U8()
	o.Children = readChildren(r)
	n := int(r.U16())
	for i := 0; i < n && r.Err() == nil; i++ {
		o.Playlist = append(o.Playlist, PlaylistEntry{r.U32(), r.I32()})
	}
	return o
}

func (o *RanSeqCntrObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Base.write(w)
		w.U16(o.LoopCount)
		w.U16(o.LoopModMin)
		w.U16(o.LoopModMax)
		w.F32(o.TransitionTime)
		w.F32(o.TransitionTimeModMin)
		w.F32(o.TransitionTimeModMax)
		w.U16(o.AvoidRepeatCount)
		w.U8(o.TransitionMode)
		w.U8(o.RandomMode)
		w.U8(o.Mode)
		w.U8(o.Bits)
		o.Children.write(w)
		w.U16(uint16(len(o.Playlist)))
		for _, e := range o.Playlist {
			w.U32(e.PlayID)
			w.I32(e.Weight)
		}
	})
}

// A SwitchPackage lists the nodes played for one switch value.
type SwitchPackage struct {
	SwitchID uint32
	NodeIDs  []uint32
}

// SwitchNodeParams are the per child playback settings of a switch container.
type SwitchNodeParams struct {
	NodeID      uint32
	Bits        uint8
	ModeBits    uint8
	FadeOutTime int32
	FadeInTime  int32
}

func (p *SwitchNodeParams) IsFirstOnly() bool      { return hasBit(p.Bits, 1<<0) }
func (p *SwitchNodeParams) ContinuePlayback() bool { return hasBit(p.Bits, 1<<1) }
func (p *SwitchNodeParams) OnSwitchMode() uint8    { return p.ModeBits & 0x01 }

// A SwitchCntrObject plays the children assigned to the current switch value.
type SwitchCntrObject struct {
	ObjectDescriptor
	Base                 NodeBaseParams
	GroupType            uint8
	GroupID              uint32
	DefaultSwitch        uint32
	ContinuousValidation bool
	Children             Children
	Switches             []SwitchPackage
	NodeParams           []SwitchNodeParams
}

func decodeSwitchCntr(d ObjectDescriptor, r *wwise.Reader) *SwitchCntrObject {
	o := &SwitchCntrObject{ObjectDescriptor: d}
	o.Base = readNodeBaseParams(r)
	o.GroupType = r.U8()
	o.GroupID = r.U32()
	o.DefaultSwitch = r.U32()
	o.ContinuousValidation = r.Bool()
	o.Children = readChildren(r)
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		p := SwitchPackage{SwitchID: r.U32()}
		p.NodeIDs = readIDs(r, int(r.U32()))
		o.Switches = append(o.Switches, p)
	}
	n = int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		o.NodeParams = append(o.NodeParams, SwitchNodeParams{
			NodeID:      r.U32(),
			Bits:        r.U8(),
			ModeBits:    r.U8(),
			FadeOutTime: r.I32(),
			FadeInTime:  r.I32(),
		})
	}
	return o
}

func (o *SwitchCntrObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Base.write(w)
		w.U8(o.GroupType)
		w.U32(o.GroupID)
		w.U32(o.DefaultSwitch)
		w.Bool(o.ContinuousValidation)
		o.Children.write(w)
		w.U32(uint32(len(o.Switches)))
		for _, p := range o.Switches {
			w.U32(p.SwitchID)
			w.U32(uint32(len(p.NodeIDs)))
			writeIDs(w, p.NodeIDs)
		}
		w.U32(uint32(len(o.NodeParams)))
		for _, p := range o.NodeParams {
			w.U32(p.NodeID)
			w.U8(p.Bits)
			w.U8(p.ModeBits)
			w.I32(p.FadeOutTime)
			w.I32(p.FadeInTime)
		}
	})
}

// A LayerAssoc maps a child of a layer to a crossfade curve.
type LayerAssoc struct {
	ChildID uint32
	Points  []GraphPoint
}

type Layer struct {
	ID       uint32
	RTPC     RTPCList
	RTPCID   uint32
	RTPCType uint8
	Assocs   []LayerAssoc
}

// A LayerCntrObject plays all of its children at once.
type LayerCntrObject struct {
	ObjectDescriptor
	Base                 NodeBaseParams
	Children             Children
	Layers               []Layer
	ContinuousValidation bool
}

func decodeLayerCntr(d ObjectDescriptor, r *wwise.Reader) *LayerCntrObject {
	o := &LayerCntrObject{ObjectDescriptor: d}
	o.Base = readNodeBaseParams(r)
	o.Children = readChildren(r)
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		l := Layer{ID: r.U32()}
		l.RTPC = readRTPCList(r)
		l.RTPCID = r.U32()
		l.RTPCType = r.U8()
		m := int(r.U32())
		for j := 0; j < m && r.Err() == nil; j++ {
			a := LayerAssoc{ChildID: r.U32()}
			a.Points = readGraphPoints(r, int(r.U32()))
			l.Assocs = append(l.Assocs, a)
		}
		o.Layers = append(o.Layers, l)
	}
	o.ContinuousValidation = r.Bool()
	return o
}

func (o *LayerCntrObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Base.write(w)
		o.Children.write(w)
		w.U32(uint32(len(o.Layers)))
		for _, l := range o.Layers {
			w.U32(l.ID)
			l.RTPC.write(w)
			w.U32(l.RTPCID)
			w.U8(l.RTPCType)
			w.U32(uint32(len(l.Assocs)))
			for _, a := range l.Assocs {
				w.U32(a.ChildID)
				w.U32(uint32(len(a.Points)))
				writeGraphPoints(w, a.Points)
			}
		}
		w.Bool(o.ContinuousValidation)
	})
}
