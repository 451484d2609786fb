// Package hirc implements the objects stored in the HIRC section of a Wwise
// SoundBank. Layouts follow bank generator version 113.
package hirc

import (
	"math"

	"github.com/hpxro7/wwisecodec/wwise"
)

func hasBit(bits uint8, mask uint8) bool {
	return bits&mask != 0
}

func setBit(bits *uint8, mask uint8, v bool) {
	if v {
		*bits |= mask
	} else {
		*bits &^= mask
	}
}

// A Prop is a single property of a PropBundle. Values are stored as raw bits
// since a property is either a float or an integer depending on its ID.
type Prop struct {
	ID    uint8
	Value uint32
}

func (p Prop) Float() float32 {
	return math.Float32frombits(p.Value)
}

// A PropBundle is a list of properties. It is encoded as a count, then every
// ID, then every value.
type PropBundle struct {
	Props []Prop
}

func readPropBundle(r *wwise.Reader) PropBundle {
	n := int(r.U8())
	if n == 0 {
		return PropBundle{}
	}
	ids := make([]uint8, n)
	for i := range ids {
		ids[i] = r.U8()
	}
	props := make([]Prop, n)
	for i := range props {
		props[i] = Prop{ID: ids[i], Value: r.U32()}
	}
	return PropBundle{props}
}

func (b *PropBundle) write(w *wwise.Writer) {
	w.U8(uint8(len(b.Props)))
	for _, p := range b.Props {
		w.U8(p.ID)
	}
	for _, p := range b.Props {
		w.U32(p.Value)
	}
}

// Get returns the value of the property with the given ID.
func (b *PropBundle) Get(id uint8) (uint32, bool) {
	for _, p := range b.Props {
		if p.ID == id {
			return p.Value, true
		}
	}
	return 0, false
}

// Set adds or replaces the property with the given ID.
func (b *PropBundle) Set(id uint8, v uint32) {
	for i := range b.Props {
		if b.Props[i].ID == id {
			b.Props[i].Value = v
			return
		}
	}
	b.Props = append(b.Props, Prop{id, v})
}

// Remove deletes the property with the given ID, reporting whether it was
// present.
func (b *PropBundle) Remove(id uint8) bool {
	for i := range b.Props {
		if b.Props[i].ID == id {
			b.Props = append(b.Props[:i], b.Props[i+1:]...)
			return true
		}
	}
	return false
}

// A RangedProp is a property randomized between Min and Max.
type RangedProp struct {
	ID  uint8
	Min float32
	Max float32
}

// RangedModifiers are encoded as a count, then every ID, then every
// min/max pair.
type RangedModifiers struct {
	Props []RangedProp
}

func readRangedModifiers(r *wwise.Reader) RangedModifiers {
	n := int(r.U8())
	if n == 0 {
		return RangedModifiers{}
	}
	ids := make([]uint8, n)
	for i := range ids {
		ids[i] = r.U8()
	}
	props := make([]RangedProp, n)
	for i := range props {
		props[i] = RangedProp{ID: ids[i], Min: r.F32(), Max: r.F32()}
	}
	return RangedModifiers{props}
}

func (m *RangedModifiers) write(w *wwise.Writer) {
	w.U8(uint8(len(m.Props)))
	for _, p := range m.Props {
		w.U8(p.ID)
	}
	for _, p := range m.Props {
		w.F32(p.Min)
		w.F32(p.Max)
	}
}

// An Effect describes an effect slot applied to an audio object.
type Effect struct {
	Index      uint8
	FxID       uint32
	IsShareSet bool
	IsRendered bool
}

func readEffects(r *wwise.Reader, n int) []Effect {
	effects := make([]Effect, n)
	for i := range effects {
		effects[i] = Effect{
			Index:      r.U8(),
			FxID:       r.U32(),
			IsShareSet: r.Bool(),
			IsRendered: r.Bool(),
		}
	}
	return effects
}

func writeEffects(w *wwise.Writer, effects []Effect) {
	for _, e := range effects {
		w.U8(e.Index)
		w.U32(e.FxID)
		w.Bool(e.IsShareSet)
		w.Bool(e.IsRendered)
	}
}

// An FxChain is the effect list of a node.
type FxChain struct {
	OverrideParent bool
	// A bit mask specifying which effects are bypassed. Bit 4 bypasses all of
	// them. Only stored when Effects is not empty.
	Bypass  uint8
	Effects []Effect
}

func readFxChain(r *wwise.Reader) FxChain {
	var c FxChain
	c.OverrideParent = r.Bool()
	n := int(r.U8())
	if n > 0 {
		c.Bypass = r.U8()
		c.Effects = readEffects(r, n)
	}
	return c
}

func (c *FxChain) write(w *wwise.Writer) {
	w.Bool(c.OverrideParent)
	w.U8(uint8(len(c.Effects)))
	if len(c.Effects) > 0 {
		w.U8(c.Bypass)
		writeEffects(w, c.Effects)
	}
}

// A GraphPoint is a single point of an interpolated curve.
type GraphPoint struct {
	From   float32
	To     float32
	Interp uint32
}

func readGraphPoints(r *wwise.Reader, n int) []GraphPoint {
	if n == 0 {
		return nil
	}
	if n > r.Remaining()/12 {
		r.Skip(r.Remaining() + 1)
		return nil
	}
	points := make([]GraphPoint, n)
	for i := range points {
		points[i] = GraphPoint{r.F32(), r.F32(), r.U32()}
	}
	return points
}

func writeGraphPoints(w *wwise.Writer, points []GraphPoint) {
	for _, p := range points {
		w.F32(p.From)
		w.F32(p.To)
		w.U32(p.Interp)
	}
}

// An RTPC binds a game parameter to a property of the owning object.
type RTPC struct {
	ID      uint32
	Type    uint8
	Accum   uint8
	ParamID uint8
	CurveID uint32
	Scaling uint8
	Points  []GraphPoint
}

type RTPCList []RTPC

func readRTPCList(r *wwise.Reader) RTPCList {
	n := int(r.U16())
	var list RTPCList
	for i := 0; i < n && r.Err() == nil; i++ {
		c := RTPC{
			ID:      r.U32(),
			Type:    r.U8(),
			Accum:   r.U8(),
			ParamID: r.U8(),
			CurveID: r.U32(),
			Scaling: r.U8(),
		}
		c.Points = readGraphPoints(r, int(r.U16()))
		list = append(list, c)
	}
	return list
}

func (l RTPCList) write(w *wwise.Writer) {
	w.U16(uint16(len(l)))
	for _, c := range l {
		w.U32(c.ID)
		w.U8(c.Type)
		w.U8(c.Accum)
		w.U8(c.ParamID)
		w.U32(c.CurveID)
		w.U8(c.Scaling)
		w.U16(uint16(len(c.Points)))
		writeGraphPoints(w, c.Points)
	}
}

// A StateRef binds a state of a group to a state property instance.
type StateRef struct {
	StateID    uint32
	InstanceID uint32
}

type StateGroup struct {
	ID       uint32
	SyncType uint8
	States   []StateRef
}

// A StateChunk lists the state groups an object reacts to.
type StateChunk struct {
	Groups []StateGroup
}

func readStateChunk(r *wwise.Reader) StateChunk {
	var c StateChunk
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		g := StateGroup{ID: r.U32(), SyncType: r.U8()}
		m := int(r.U16())
		for j := 0; j < m && r.Err() == nil; j++ {
			g.States = append(g.States, StateRef{r.U32(), r.U32()})
		}
		c.Groups = append(c.Groups, g)
	}
	return c
}

func (c *StateChunk) write(w *wwise.Writer) {
	w.U32(uint32(len(c.Groups)))
	for _, g := range c.Groups {
		w.U32(g.ID)
		w.U8(g.SyncType)
		w.U16(uint16(len(g.States)))
		for _, s := range g.States {
			w.U32(s.StateID)
			w.U32(s.InstanceID)
		}
	}
}

// Children lists the direct children of a container.
type Children struct {
	IDs []uint32
}

func readIDs(r *wwise.Reader, n int) []uint32 {
	if n == 0 {
		return nil
	}
	if n > r.Remaining()/4 {
		r.Skip(r.Remaining() + 1)
		return nil
	}
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = r.U32()
	}
	return ids
}

func writeIDs(w *wwise.Writer, ids []uint32) {
	for _, id := range ids {
		w.U32(id)
	}
}

func readChildren(r *wwise.Reader) Children {
	return Children{readIDs(r, int(r.U32()))}
}

func (c *Children) write(w *wwise.Writer) {
	w.U32(uint32(len(c.IDs)))
	writeIDs(w, c.IDs)
}

// AdvSettings holds the voice and HDR settings of a node.
type AdvSettings struct {
	Bits                   uint8
	VirtualQueueBehavior   uint8
	MaxNumInstance         uint16
	BelowThresholdBehavior uint8
	HdrBits                uint8
}

const (
	advKillNewest                 = 1 << 0
	advUseVirtualBehavior         = 1 << 1
	advIgnoreParentMaxNumInst     = 1 << 3
	advIsVVoicesOptOverrideParent = 1 << 4

	hdrOverrideEnvelope  = 1 << 0
	hdrOverrideAnalysis  = 1 << 1
	hdrNormalizeLoudness = 1 << 2
	hdrEnableEnvelope    = 1 << 3
)

func (a *AdvSettings) KillNewest() bool { return hasBit(a.Bits, advKillNewest) }
func (a *AdvSettings) UseVirtualBehavior() bool {
	return hasBit(a.Bits, advUseVirtualBehavior)
}
func (a *AdvSettings) IgnoreParentMaxNumInst() bool {
	return hasBit(a.Bits, advIgnoreParentMaxNumInst)
}
func (a *AdvSettings) VVoicesOptOverrideParent() bool {
	return hasBit(a.Bits, advIsVVoicesOptOverrideParent)
}
func (a *AdvSettings) OverrideHdrEnvelope() bool {
	return hasBit(a.HdrBits, hdrOverrideEnvelope)
}
func (a *AdvSettings) OverrideAnalysis() bool {
	return hasBit(a.HdrBits, hdrOverrideAnalysis)
}
func (a *AdvSettings) NormalizeLoudness() bool {
	return hasBit(a.HdrBits, hdrNormalizeLoudness)
}
func (a *AdvSettings) EnableEnvelope() bool {
	return hasBit(a.HdrBits, hdrEnableEnvelope)
}

func readAdvSettings(r *wwise.Reader) AdvSettings {
	return AdvSettings{
		Bits:                   r.U8(),
		VirtualQueueBehavior:   r.U8(),
		MaxNumInstance:         r.U16(),
		BelowThresholdBehavior: r.U8(),
		HdrBits:                r.U8(),
	}
}

func (a *AdvSettings) write(w *wwise.Writer) {
	w.U8(a.Bits)
	w.U8(a.VirtualQueueBehavior)
	w.U16(a.MaxNumInstance)
	w.U8(a.BelowThresholdBehavior)
	w.U8(a.HdrBits)
}

// AuxParams holds the auxiliary sends of a node.
type AuxParams struct {
	Bits   uint8
	AuxIDs [4]uint32
}

const (
	auxOverrideGameAuxSends = 1 << 2
	auxUseGameAuxSends      = 1 << 3
	auxOverrideUserAuxSends = 1 << 4
	auxHasAux               = 1 << 5
)

func (a *AuxParams) OverrideGameAuxSends() bool {
	return hasBit(a.Bits, auxOverrideGameAuxSends)
}
func (a *AuxParams) UseGameAuxSends() bool { return hasBit(a.Bits, auxUseGameAuxSends) }
func (a *AuxParams) OverrideUserAuxSends() bool {
	return hasBit(a.Bits, auxOverrideUserAuxSends)
}

// HasAux reports whether the user auxiliary bus IDs are stored.
func (a *AuxParams) HasAux() bool { return hasBit(a.Bits, auxHasAux) }

func readAuxParams(r *wwise.Reader) AuxParams {
	a := AuxParams{Bits: r.U8()}
	if a.HasAux() {
		for i := range a.AuxIDs {
			a.AuxIDs[i] = r.U32()
		}
	}
	return a
}

func (a *AuxParams) write(w *wwise.Writer) {
	w.U8(a.Bits)
	if a.HasAux() {
		for _, id := range a.AuxIDs {
			w.U32(id)
		}
	}
}

// NodeBaseParams are shared by every object of the actor-mixer and
// interactive music hierarchies.
type NodeBaseParams struct {
	Fx             FxChain
	OverrideBusID  uint32
	DirectParentID uint32
	Bits           uint8
	Props          PropBundle
	Ranged         RangedModifiers
	Positioning    PositioningParams
	Aux            AuxParams
	Adv            AdvSettings
	States         StateChunk
	RTPC           RTPCList
}

const (
	nodePriorityOverrideParent     = 1 << 0
	nodePriorityApplyDistFactor    = 1 << 1
	nodeOverrideMidiEventsBehavior = 1 << 2
	nodeOverrideMidiNoteTracking   = 1 << 3
	nodeEnableMidiNoteTracking     = 1 << 4
	nodeMidiBreakLoopOnNoteOff     = 1 << 5
)

func (p *NodeBaseParams) PriorityOverrideParent() bool {
	return hasBit(p.Bits, nodePriorityOverrideParent)
}
func (p *NodeBaseParams) PriorityApplyDistFactor() bool {
	return hasBit(p.Bits, nodePriorityApplyDistFactor)
}
func (p *NodeBaseParams) OverrideMidiEventsBehavior() bool {
	return hasBit(p.Bits, nodeOverrideMidiEventsBehavior)
}
func (p *NodeBaseParams) OverrideMidiNoteTracking() bool {
	return hasBit(p.Bits, nodeOverrideMidiNoteTracking)
}
func (p *NodeBaseParams) EnableMidiNoteTracking() bool {
	return hasBit(p.Bits, nodeEnableMidiNoteTracking)
}
func (p *NodeBaseParams) MidiBreakLoopOnNoteOff() bool {
	return hasBit(p.Bits, nodeMidiBreakLoopOnNoteOff)
}

func readNodeBaseParams(r *wwise.Reader) NodeBaseParams {
	var p NodeBaseParams
	p.Fx = readFxChain(r)
	p.OverrideBusID = r.U32()
	p.DirectParentID = r.U32()
	p.Bits = r.U8()
	p.Props = readPropBundle(r)
	p.Ranged = readRangedModifiers(r)
	p.Positioning = readPositioningParams(r)
	p.Aux = readAuxParams(r)
	p.Adv = readAdvSettings(r)
	p.States = readStateChunk(r)
	p.RTPC = readRTPCList(r)
	return p
}

func (p *NodeBaseParams) write(w *wwise.Writer) {
	p.Fx.write(w)
	w.U32(p.OverrideBusID)
	w.U32(p.DirectParentID)
	w.U8(p.Bits)
	p.Props.write(w)
	p.Ranged.write(w)
	p.Positioning.write(w)
	p.Aux.write(w)
	p.Adv.write(w)
	p.States.write(w)
	p.RTPC.write(w)
}
