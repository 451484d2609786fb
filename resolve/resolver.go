package resolve

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hpxro7/wwisecodec/bnk"
	"github.com/hpxro7/wwisecodec/hirc"
	"github.com/hpxro7/wwisecodec/wwise"
)

// A Lookup finds a loaded SoundBank by bank ID, returning nil when the bank is
// not loaded. It is called while resolving and must not modify any bank.
type Lookup func(id uint32) *bnk.File

// Chain returns a Lookup that asks each of lookups in turn, such as the
// lookups of several packages or languages.
func Chain(lookups ...Lookup) Lookup {
	return func(id uint32) *bnk.File {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if b := l(id); b != nil {
				return b
			}
		}
		return nil
	}
}

// An Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger that receives resolution diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Resolver) { r.log = log }
}

// A Resolver maps cues to the wems played by their events.
type Resolver struct {
	log     logrus.FieldLogger
	byIndex map[uint32]*Cue
	byName  map[string]*Cue
	byFile  map[uint32]*Cue
}

// NewResolver returns a Resolver with no cues.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		byIndex: make(map[uint32]*Cue),
		byName:  make(map[string]*Cue),
		byFile:  make(map[uint32]*Cue),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = wwise.NewLogger()
	}
	return r
}

// ResolveFileIDs resolves every event of b that is the index of a loaded cue,
// recording the wems it plays against the cue. Play actions that target
// another bank are followed through lookup, which may be nil. It returns the
// number of events resolved.
func (r *Resolver) ResolveFileIDs(b *bnk.File, lookup Lookup) int {
	log := r.log.WithField("bank", b.BankID())
	if err := b.HircErr(); err != nil {
		log.WithError(err).Warn("bank objects are not decoded; no event is resolved")
		return 0
	}
	resolved := 0
	for _, obj := range b.Objects() {
		ev, ok := obj.(*hirc.EventObject)
		if !ok {
			continue
		}
		cue, ok := r.byIndex[ev.ID()]
		if !ok {
			continue
		}
		w := &walker{
			log:     log.WithField("cue", cue.Name),
			lookup:  lookup,
			visited: make(map[visit]bool),
		}
		w.object(b, ev.ID())
		for _, id := range w.ids {
			if cue.add(id) {
				if _, ok := r.byFile[id]; !ok {
					r.byFile[id] = cue
				}
			}
		}
		log.WithFields(logrus.Fields{
			"cue":   cue.Name,
			"files": len(w.ids),
		}).Debug("resolved event")
		resolved++
	}
	return resolved
}

// A visit identifies an object of a bank.
type visit struct {
	bank   uint32
	object uint32
}

// A walker collects the wems reachable from one event.
type walker struct {
	log     logrus.FieldLogger
	lookup  Lookup
	visited map[visit]bool
	ids     []uint32
}

func (w *walker) missing(b *bnk.File, id uint32) {
	err := fmt.Errorf("%w: object %d", wwise.ErrReferenceNotFound, id)
	w.log.WithError(err).WithFields(logrus.Fields{
		"bank":   b.BankID(),
		"object": id,
	}).Warn("skipping reference")
}

// object walks the object with the given ID of bank b depth first. Objects
// already walked for the event are skipped, so cyclic references terminate.
func (w *walker) object(b *bnk.File, id uint32) {
	v := visit{b.BankID(), id}
	if w.visited[v] {
		return
	}
	w.visited[v] = true
	obj, ok := b.Object(id)
	if !ok {
		w.missing(b, id)
		return
	}

	switch o := obj.(type) {
	case *hirc.EventObject:
		w.children(b, o.ActionIDs)
	case *hirc.ActionObject:
		w.action(b, o)
	case *hirc.SoundObject:
		w.ids = append(w.ids, o.Source.Media.SourceID)
	case *hirc.MusicTrackObject:
		for _, s := range o.Sources {
			if s.StreamType == hirc.StreamEmbedded {
				w.ids = append(w.ids, s.Media.SourceID)
			}
		}
	case *hirc.RanSeqCntrObject:
		w.children(b, o.Children.IDs)
	case *hirc.SwitchCntrObject:
		w.children(b, o.Children.IDs)
	case *hirc.LayerCntrObject:
		w.children(b, o.Children.IDs)
	case *hirc.ActorMixerObject:
		w.children(b, o.Children.IDs)
	case *hirc.MusicSegmentObject:
		w.children(b, o.Music.Children.IDs)
	case *hirc.MusicSwitchObject:
		w.children(b, o.Trans.Children.IDs)
		w.children(b, o.Tree.AudioNodeIDs())
	case *hirc.MusicRanSeqObject:
		w.children(b, o.Trans.Children.IDs)
		if o.Playlist != nil {
			w.children(b, o.Playlist.SegmentIDs())
		}
	case *hirc.DialogueEventObject:
		w.children(b, o.Tree.AudioNodeIDs())
	case *hirc.StateObject, *hirc.BusObject, *hirc.AttenuationObject,
		*hirc.FxObject:
		// These do not reference playable objects.
	default:
		w.log.WithFields(logrus.Fields{
			"object": id,
			"type":   obj.Type().String(),
		}).Debug("object type is not followed")
	}
}

func (w *walker) children(b *bnk.File, ids []uint32) {
	for _, id := range ids {
		w.object(b, id)
	}
}

// action follows a play action to its target. The target is looked up in the
// bank the action names, falling back to the bank of the action.
func (w *walker) action(b *bnk.File, o *hirc.ActionObject) {
	play, ok := o.Play()
	if !ok {
		return
	}
	target := b
	if play.BankID != b.BankID() && w.lookup != nil {
		if other := w.lookup(play.BankID); other != nil {
			target = other
		} else {
			w.log.WithFields(logrus.Fields{
				"bank":   play.BankID,
				"object": o.TargetID,
			}).Debug("target bank is not loaded; using the action's bank")
		}
	}
	if target != b {
		if _, ok := target.Object(o.TargetID); !ok {
			target = b
		}
	}
	w.object(target, o.TargetID)
}
