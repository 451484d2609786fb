package hirc

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/hpxro7/wwisecodec/wwise"
)

// The number of bytes used to describe the type and length of a HIRC object.
const OBJECT_DESCRIPTOR_BYTES = 5

// The number of bytes used to describe the ID of a HIRC object.
const OBJECT_DESCRIPTOR_ID_BYTES = 4

// Type is the one byte tag identifying the kind of a HIRC object.
type Type uint8

const (
	TypeState         Type = 1
	TypeSound         Type = 2
	TypeAction        Type = 3
	TypeEvent         Type = 4
	TypeRanSeqCntr    Type = 5
	TypeSwitchCntr    Type = 6
	TypeActorMixer    Type = 7
	TypeBus           Type = 8
	TypeLayerCntr     Type = 9
	TypeMusicSegment  Type = 10
	TypeMusicTrack    Type = 11
	TypeMusicSwitch   Type = 12
	TypeMusicRanSeq   Type = 13
	TypeAttenuation   Type = 14
	TypeDialogueEvent Type = 15
	TypeFeedbackBus   Type = 16
	TypeFeedbackNode  Type = 17
	TypeFxShareSet    Type = 18
	TypeFxCustom      Type = 19
)

var typeNames = map[Type]string{
	TypeState:         "State",
	TypeSound:         "Sound",
	TypeAction:        "Action",
	TypeEvent:         "Event",
	TypeRanSeqCntr:    "RanSeqCntr",
	TypeSwitchCntr:    "SwitchCntr",
	TypeActorMixer:    "ActorMixer",
	TypeBus:           "Bus",
	TypeLayerCntr:     "LayerCntr",
	TypeMusicSegment:  "MusicSegment",
	TypeMusicTrack:    "MusicTrack",
	TypeMusicSwitch:   "MusicSwitch",
	TypeMusicRanSeq:   "MusicRanSeq",
	TypeAttenuation:   "Attenuation",
	TypeDialogueEvent: "DialogueEvent",
	TypeFeedbackBus:   "FeedbackBus",
	TypeFeedbackNode:  "FeedbackNode",
	TypeFxShareSet:    "FxShareSet",
	TypeFxCustom:      "FxCustom",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(0x%02X)", uint8(t))
}

// Object represents a single object within the HIRC section.
type Object interface {
	io.WriterTo
	ID() uint32
	Type() Type
}

// A ObjectDescriptor describes a single object within a HIRC section.
type ObjectDescriptor struct {
	ObjectType Type
	// The length in bytes of the id and data portion of this object, as last
	// read or written.
	Length   uint32
	ObjectId uint32
}

func (d *ObjectDescriptor) ID() uint32 { return d.ObjectId }
func (d *ObjectDescriptor) Type() Type { return d.ObjectType }

// writeObject writes the descriptor of an object followed by the body
// produced by encode, updating the descriptor's length.
func writeObject(w io.Writer, d *ObjectDescriptor,
	encode func(*wwise.Writer)) (int64, error) {
	body := wwise.NewWriter()
	body.U32(d.ObjectId)
	encode(body)
	d.Length = uint32(body.Len())

	out := wwise.NewWriter()
	out.U8(uint8(d.ObjectType))
	out.U32(d.Length)
	out.Write(body.Bytes())
	n, err := w.Write(out.Bytes())
	return int64(n), err
}

// Decode reads a single object, including its descriptor, from r. The object
// is decoded inside a window of its declared length; a window that is not
// consumed exactly is reported to log.
func Decode(r *wwise.Reader, log logrus.FieldLogger) (Object, error) {
	d := ObjectDescriptor{ObjectType: Type(r.U8()), Length: r.U32()}
	if r.Err() != nil {
		return nil, fmt.Errorf("read object descriptor: %w", r.Err())
	}
	or, err := r.Sub("HIRC object", int64(d.Length))
	if err != nil {
		return nil, err
	}
	d.ObjectId = or.U32()

	obj, err := decodeBody(d, or)
	if err != nil {
		return nil, fmt.Errorf("decode %s %d: %w", d.ObjectType, d.ObjectId, err)
	}
	if or.Err() != nil {
		return nil, fmt.Errorf("decode %s %d: %w", d.ObjectType, d.ObjectId,
			or.Err())
	}
	wwise.CheckConsumed(log.WithFields(logrus.Fields{
		"object": d.ObjectId,
		"type":   d.ObjectType.String(),
	}), d.ObjectType.String(), or)
	return obj, nil
}

func decodeBody(d ObjectDescriptor, r *wwise.Reader) (Object, error) {
	switch d.ObjectType {
	case TypeState:
		return &StateObject{d, readPropBundle(r)}, nil
	case TypeSound:
		return decodeSound(d, r), nil
	case TypeAction:
		return decodeAction(d, r)
	case TypeEvent:
		return &EventObject{d, readIDs(r, int(r.U32()))}, nil
	case TypeRanSeqCntr:
		return decodeRanSeqCntr(d, r), nil
	case TypeSwitchCntr:
		return decodeSwitchCntr(d, r), nil
	case TypeActorMixer:
		return &ActorMixerObject{d, readNodeBaseParams(r), readChildren(r)}, nil
	case TypeBus:
		return decodeBus(d, r), nil
	case TypeLayerCntr:
		return decodeLayerCntr(d, r), nil
	case TypeMusicSegment:
		return decodeMusicSegment(d, r), nil
	case TypeMusicTrack:
		return decodeMusicTrack(d, r), nil
	case TypeMusicSwitch:
		return decodeMusicSwitch(d, r)
	case TypeMusicRanSeq:
		return decodeMusicRanSeq(d, r)
	case TypeAttenuation:
		return decodeAttenuation(d, r), nil
	case TypeDialogueEvent:
		return decodeDialogueEvent(d, r)
	case TypeFxShareSet, TypeFxCustom:
		return decodeFx(d, r), nil
	case TypeFeedbackBus, TypeFeedbackNode:
		return nil, &wwise.UnsupportedTypeError{
			Type: uint8(d.ObjectType),
			Name: d.ObjectType.String(),
		}
	}
	return nil, &wwise.UnsupportedTypeError{Type: uint8(d.ObjectType)}
}

// A StateObject holds the property overrides applied while a state is set.
type StateObject struct {
	ObjectDescriptor
	Props PropBundle
}

func (o *StateObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, o.Props.write)
}

// An EventObject triggers an ordered list of actions.
type EventObject struct {
	ObjectDescriptor
	ActionIDs []uint32
}

func (o *EventObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		w.U32(uint32(len(o.ActionIDs)))
		writeIDs(w, o.ActionIDs)
	})
}

// An ActorMixerObject groups sounds and containers for shared properties.
type ActorMixerObject struct {
	ObjectDescriptor
	Base     NodeBaseParams
	Children Children
}

func (o *ActorMixerObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Base.write(w)
		o.Children.write(w)
	})
}
