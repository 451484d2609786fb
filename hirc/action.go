package hirc

import (
	"fmt"
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// ActionType is the two byte type of an action. The high byte selects what
// the action does; the low byte its scope.
type ActionType uint16

// Action kinds, as stored in the high byte of an ActionType.
const (
	ActionStop               = 0x01
	ActionPause              = 0x02
	ActionResume             = 0x03
	ActionPlay               = 0x04
	ActionMute               = 0x06
	ActionUnmute             = 0x07
	ActionSetPitch           = 0x08
	ActionResetPitch         = 0x09
	ActionSetVolume          = 0x0A
	ActionResetVolume        = 0x0B
	ActionSetBusVolume       = 0x0C
	ActionResetBusVolume     = 0x0D
	ActionSetLPF             = 0x0E
	ActionResetLPF           = 0x0F
	ActionUseState           = 0x10
	ActionUnuseState         = 0x11
	ActionSetState           = 0x12
	ActionSetGameParameter   = 0x13
	ActionResetGameParameter = 0x14
	ActionSetSwitch          = 0x19
	ActionBypassFX           = 0x1A
	ActionResetBypassFX      = 0x1B
	ActionBreak              = 0x1C
	ActionTrigger            = 0x1D
	ActionSeek               = 0x1E
	ActionRelease            = 0x1F
	ActionSetHPF             = 0x20
	ActionPlayEvent          = 0x21
	ActionResetPlaylist      = 0x22
	ActionResetHPF           = 0x30
)

// Kind returns the high byte of the action type.
func (t ActionType) Kind() uint8 {
	return uint8(t >> 8)
}

// ActionParams are the type specific parameters of an action.
type ActionParams interface {
	write(w *wwise.Writer)
}

// An Exception excludes an object from a stop, pause or value action.
type Exception struct {
	ID    uint32
	IsBus bool
}

func readExceptions(r *wwise.Reader) []Exception {
	n := int(r.U32())
	if n == 0 {
		return nil
	}
	if n > r.Remaining()/5 {
		r.Skip(r.Remaining() + 1)
		return nil
	}
	ex := make([]Exception, n)
	for i := range ex {
		ex[i] = Exception{r.U32(), r.Bool()}
	}
	return ex
}

func writeExceptions(w *wwise.Writer, ex []Exception) {
	w.U32(uint32(len(ex)))
	for _, e := range ex {
		w.U32(e.ID)
		w.Bool(e.IsBus)
	}
}

// A Randomizer is a base value with a random range applied on top.
type Randomizer struct {
	Base, Min, Max float32
}

func readRandomizer(r *wwise.Reader) Randomizer {
	return Randomizer{r.F32(), r.F32(), r.F32()}
}

func (m Randomizer) write(w *wwise.Writer) {
	w.F32(m.Base)
	w.F32(m.Min)
	w.F32(m.Max)
}

// PlayParams are the parameters of a play action. The object played is the
// action's target; BankID names the SoundBank that contains it.
type PlayParams struct {
	FadeCurve uint8
	BankID    uint32
}

func (p *PlayParams) write(w *wwise.Writer) {
	w.U8(p.FadeCurve)
	w.U32(p.BankID)
}

// ActiveParams are the parameters of stop, pause and resume actions.
type ActiveParams struct {
	FadeCurve uint8
	// Action specific flags, such as applying a stop to state transitions.
	Bits       uint8
	Exceptions []Exception
}

func (p *ActiveParams) write(w *wwise.Writer) {
	w.U8(p.FadeCurve)
	w.U8(p.Bits)
	writeExceptions(w, p.Exceptions)
}

// ValueParams are the parameters of actions that change or reset a property
// of their target.
type ValueParams struct {
	FadeCurve uint8
	// Set for property actions, nil for mute and unmute.
	Prop       *PropValue
	Exceptions []Exception
}

type PropValue struct {
	ValueMeaning uint8
	Value        Randomizer
}

func (p *ValueParams) write(w *wwise.Writer) {
	w.U8(p.FadeCurve)
	if p.Prop != nil {
		w.U8(p.Prop.ValueMeaning)
		p.Prop.Value.write(w)
	}
	writeExceptions(w, p.Exceptions)
}

// GameParamParams are the parameters of game parameter actions.
type GameParamParams struct {
	FadeCurve        uint8
	BypassTransition bool
	ValueMeaning     uint8
	Value            Randomizer
	Exceptions       []Exception
}

func (p *GameParamParams) write(w *wwise.Writer) {
	w.U8(p.FadeCurve)
	w.Bool(p.BypassTransition)
	w.U8(p.ValueMeaning)
	p.Value.write(w)
	writeExceptions(w, p.Exceptions)
}

type StateParams struct {
	GroupID       uint32
	TargetStateID uint32
}

func (p *StateParams) write(w *wwise.Writer) {
	w.U32(p.GroupID)
	w.U32(p.TargetStateID)
}

type SwitchParams struct {
	GroupID  uint32
	SwitchID uint32
}

func (p *SwitchParams) write(w *wwise.Writer) {
	w.U32(p.GroupID)
	w.U32(p.SwitchID)
}

type BypassFXParams struct {
	IsBypass   bool
	TargetMask uint8
	Exceptions []Exception
}

func (p *BypassFXParams) write(w *wwise.Writer) {
	w.Bool(p.IsBypass)
	w.U8(p.TargetMask)
	writeExceptions(w, p.Exceptions)
}

type SeekParams struct {
	RelativeToDuration bool
	Position           Randomizer
	SnapToMarker       bool
	Exceptions         []Exception
}

func (p *SeekParams) write(w *wwise.Writer) {
	w.Bool(p.RelativeToDuration)
	p.Position.write(w)
	w.Bool(p.SnapToMarker)
	writeExceptions(w, p.Exceptions)
}

// NoParams is used by actions without type specific parameters.
type NoParams struct{}

func (NoParams) write(*wwise.Writer) {}

// An ActionObject represents a single action triggered by an event.
type ActionObject struct {
	ObjectDescriptor
	ActionType ActionType
	TargetID   uint32
	IsBus      bool
	Props      PropBundle
	Ranged     RangedModifiers
	Params     ActionParams
}

func decodeAction(d ObjectDescriptor, r *wwise.Reader) (*ActionObject, error) {
	o := &ActionObject{ObjectDescriptor: d}
	o.ActionType = ActionType(r.U16())
	o.TargetID = r.U32()
	o.IsBus = r.Bool()
	o.Props = readPropBundle(r)
	o.Ranged = readRangedModifiers(r)

	switch k := o.ActionType.Kind(); k {
	case ActionPlay:
		o.Params = &PlayParams{FadeCurve: r.U8(), BankID: r.U32()}
	case ActionStop, ActionPause, ActionResume:
		o.Params = &ActiveParams{r.U8(), r.U8(), readExceptions(r)}
	case ActionMute, ActionUnmute:
		o.Params = &ValueParams{FadeCurve: r.U8(), Exceptions: readExceptions(r)}
	case ActionSetPitch, ActionResetPitch, ActionSetVolume, ActionResetVolume,
		ActionSetBusVolume, ActionResetBusVolume, ActionSetLPF, ActionResetLPF,
		ActionSetHPF, ActionResetHPF:
		p := &ValueParams{FadeCurve: r.U8()}
		p.Prop = &PropValue{r.U8(), readRandomizer(r)}
		p.Exceptions = readExceptions(r)
		o.Params = p
	case ActionSetGameParameter, ActionResetGameParameter:
		o.Params = &GameParamParams{
			FadeCurve:        r.U8(),
			BypassTransition: r.Bool(),
			ValueMeaning:     r.U8(),
			Value:            readRandomizer(r),
			Exceptions:       readExceptions(r),
		}
	case ActionSetState:
		o.Params = &StateParams{r.U32(), r.U32()}
	case ActionSetSwitch:
		o.Params = &SwitchParams{r.U32(), r.U32()}
	case ActionBypassFX, ActionResetBypassFX:
		o.Params = &BypassFXParams{r.Bool(), r.U8(), readExceptions(r)}
	case ActionSeek:
		o.Params = &SeekParams{
			RelativeToDuration: r.Bool(),
			Position:           readRandomizer(r),
			SnapToMarker:       r.Bool(),
			Exceptions:         readExceptions(r),
		}
	case ActionUseState, ActionUnuseState, ActionBreak, ActionTrigger,
		ActionRelease, ActionPlayEvent, ActionResetPlaylist:
		o.Params = NoParams{}
	default:
		return nil, fmt.Errorf("%w: action type 0x%04X", wwise.ErrUnsupportedType,
			uint16(o.ActionType))
	}
	return o, nil
}

func (o *ActionObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		w.U16(uint16(o.ActionType))
		w.U32(o.TargetID)
		w.Bool(o.IsBus)
		o.Props.write(w)
		o.Ranged.write(w)
		if o.Params != nil {
			o.Params.write(w)
		}
	})
}

// Play returns the play parameters of a play action.
func (o *ActionObject) Play() (*PlayParams, bool) {
	p, ok := o.Params.(*PlayParams)
	return p, ok
}
