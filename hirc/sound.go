package hirc

import (
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// The property ID of the loop count of a sound.
const PropLoop = 0x07

// A LoopValue identifier for looping infinite times.
const InfiniteLoops = 0

// LoopValue describes the loop parameters of a given audio object.
type LoopValue struct {
	// True if this audio object loops; and false if otherwise.
	Loops bool
	// The number of times this audio track will play. 0 means that this audio will
	// play infinite times. This value is not vaild if loops is false.
	Value uint32
}

// A SoundObject represents a Voice/SFX Sound object within the HIRC section.
type SoundObject struct {
	ObjectDescriptor
	Source BankSourceData
	Base   NodeBaseParams
}

func decodeSound(d ObjectDescriptor, r *wwise.Reader) *SoundObject {
	o := &SoundObject{ObjectDescriptor: d}
	o.Source = readBankSourceData(r)
	o.Base = readNodeBaseParams(r)
	return o
}

func (o *SoundObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Source.write(w)
		o.Base.write(w)
	})
}

// MediaRefs returns the media information of the sound's source.
func (o *SoundObject) MediaRefs() []*MediaInformation {
	return []*MediaInformation{&o.Source.Media}
}

// Loop returns the loop setting of this sound.
func (o *SoundObject) Loop() LoopValue {
	v, ok := o.Base.Props.Get(PropLoop)
	return LoopValue{ok, v}
}

// SetLoop replaces the loop setting of this sound. Removing the loop deletes
// the property, which shrinks the object.
func (o *SoundObject) SetLoop(loop LoopValue) {
	if !loop.Loops {
		o.Base.Props.Remove(PropLoop)
		return
	}
	o.Base.Props.Set(PropLoop, loop.Value)
}

// A MediaReferrer is an object that refers to wems by source ID.
type MediaReferrer interface {
	Object
	MediaRefs() []*MediaInformation
}
