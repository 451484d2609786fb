package hirc

import (
	"github.com/hpxro7/wwisecodec/wwise"
)

const (
	posOverrideParent       = 1 << 0
	posEnable2D             = 1 << 1
	posEnableSpatialization = 1 << 2
	pos3DAvailable          = 1 << 3
)

const (
	pos3DUserDefined         = 1 << 0
	pos3DHoldEmitterPosition = 1 << 3
	pos3DHoldListenerOrient  = 1 << 4
	pos3DIsLooping           = 1 << 5
	pos3DIsDynamic           = 1 << 6
)

// SpatializationMode selects where a 3D sound's emitter position comes from.
type SpatializationMode uint8

const (
	// The position is set by the game.
	SpatializationGameDefined SpatializationMode = iota
	// The position follows an automation path authored with the sound.
	SpatializationUserDefined
)

// A PathVertex is a point of a 3D automation path.
type PathVertex struct {
	X, Y, Z  float32
	Duration int32
}

type PathPlaylistItem struct {
	VerticesOffset uint32
	NumVertices    uint32
}

type PathRange struct {
	X, Y, Z float32
}

// PathAutomation describes the 3D automation paths of a user defined
// positioning. Ranges holds one entry per playlist item.
type PathAutomation struct {
	PathMode       uint8
	TransitionTime int32
	Vertices       []PathVertex
	Playlist       []PathPlaylistItem
	Ranges         []PathRange
}

// PositioningParams describes how an object is positioned. Bits and Bits3D
// are bit fields; use the accessor methods to read individual settings.
type PositioningParams struct {
	Bits          uint8
	Bits3D        uint8
	AttenuationID uint32
	// Only set when the positioning is 3D and user defined.
	Path *PathAutomation
}

func (p *PositioningParams) OverrideParent() bool { return hasBit(p.Bits, posOverrideParent) }
func (p *PositioningParams) Enable2D() bool       { return hasBit(p.Bits, posEnable2D) }
func (p *PositioningParams) EnableSpatialization() bool {
	return hasBit(p.Bits, posEnableSpatialization)
}

// Is3DAvailable reports whether the 3D settings are stored.
func (p *PositioningParams) Is3DAvailable() bool { return hasBit(p.Bits, pos3DAvailable) }

func (p *PositioningParams) SetOverrideParent(v bool) { setBit(&p.Bits, posOverrideParent, v) }
func (p *PositioningParams) SetEnable2D(v bool)       { setBit(&p.Bits, posEnable2D, v) }
func (p *PositioningParams) SetEnableSpatialization(v bool) {
	setBit(&p.Bits, posEnableSpatialization, v)
}

func (p *PositioningParams) SpatializationMode() SpatializationMode {
	return SpatializationMode(p.Bits3D & pos3DUserDefined)
}
func (p *PositioningParams) HoldEmitterPosition() bool {
	return hasBit(p.Bits3D, pos3DHoldEmitterPosition)
}
func (p *PositioningParams) HoldListenerOrientation() bool {
	return hasBit(p.Bits3D, pos3DHoldListenerOrient)
}
func (p *PositioningParams) IsLooping() bool { return hasBit(p.Bits3D, pos3DIsLooping) }
func (p *PositioningParams) IsDynamic() bool { return hasBit(p.Bits3D, pos3DIsDynamic) }

func readPositioningParams(r *wwise.Reader) PositioningParams {
	p := PositioningParams{Bits: r.U8()}
	if !p.Is3DAvailable() {
		return p
	}
	p.Bits3D = r.U8()
	p.AttenuationID = r.U32()
	if p.SpatializationMode() != SpatializationUserDefined {
		return p
	}
	path := &PathAutomation{PathMode: r.U8(), TransitionTime: r.I32()}
	n := int(r.U32())
	if n > r.Remaining()/16 {
		r.Skip(r.Remaining() + 1)
		return p
	}
	path.Vertices = make([]PathVertex, n)
	for i := range path.Vertices {
		path.Vertices[i] = PathVertex{r.F32(), r.F32(), r.F32(), r.I32()}
	}
	n = int(r.U32())
	if n > r.Remaining()/8 {
		r.Skip(r.Remaining() + 1)
		return p
	}
	path.Playlist = make([]PathPlaylistItem, n)
	for i := range path.Playlist {
		path.Playlist[i] = PathPlaylistItem{r.U32(), r.U32()}
	}
	path.Ranges = make([]PathRange, n)
	for i := range path.Ranges {
		path.Ranges[i] = PathRange{r.F32(), r.F32(), r.F32()}
	}
	p.Path = path
	return p
}

func (p *PositioningParams) write(w *wwise.Writer) {
	w.U8(p.Bits)
	if !p.Is3DAvailable() {
		return
	}
	w.U8(p.Bits3D)
	w.U32(p.AttenuationID)
	if p.SpatializationMode() != SpatializationUserDefined {
		return
	}
	path := p.Path
	if path == nil {
		path = new(PathAutomation)
	}
	w.U8(path.PathMode)
	w.I32(path.TransitionTime)
	w.U32(uint32(len(path.Vertices)))
	for _, v := range path.Vertices {
		w.F32(v.X)
		w.F32(v.Y)
		w.F32(v.Z)
		w.I32(v.Duration)
	}
	w.U32(uint32(len(path.Playlist)))
	for _, item := range path.Playlist {
		w.U32(item.VerticesOffset)
		w.U32(item.NumVertices)
	}
	for i := range path.Playlist {
		var rg PathRange
		if i < len(path.Ranges) {
			rg = path.Ranges[i]
		}
		w.F32(rg.X)
		w.F32(rg.Y)
		w.F32(rg.Z)
	}
}
