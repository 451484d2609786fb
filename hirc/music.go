package hirc

import (
	"fmt"
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// MeterInfo is the time signature and grid of a music node.
type MeterInfo struct {
	GridPeriod  float64
	GridOffset  float64
	Tempo       float32
	NumBeatsBar uint8
	BeatValue   uint8
}

// A Stinger plays a segment when a trigger is posted.
type Stinger struct {
	TriggerID           uint32
	SegmentID           uint32
	SyncPlayAt          uint32
	CueFilterHash       uint32
	DontRepeatTime      int32
	NumSegmentLookAhead uint32
}

// MusicNodeParams are shared by every interactive music object.
type MusicNodeParams struct {
	Flags         uint8
	Base          NodeBaseParams
	Children      Children
	Meter         MeterInfo
	MeterInfoFlag uint8
	Stingers      []Stinger
}

func readMusicNodeParams(r *wwise.Reader) MusicNodeParams {
	var p MusicNodeParams
	p.Flags = r.U8()
	p.Base = readNodeBaseParams(r)
	p.Children = readChildren(r)
	p.Meter = MeterInfo{r.F64(), r.F64(), r.F32(), r.U8(), r.U8()}
	p.MeterInfoFlag = r.U8()
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		p.Stingers = append(p.Stingers, Stinger{
			r.U32(), r.U32(), r.U32(), r.U32(), r.I32(), r.U32(),
		})
	}
	return p
}

func (p *MusicNodeParams) write(w *wwise.Writer) {
	w.U8(p.Flags)
	p.Base.write(w)
	p.Children.write(w)
	w.F64(p.Meter.GridPeriod)
	w.F64(p.Meter.GridOffset)
	w.F32(p.Meter.Tempo)
	w.U8(p.Meter.NumBeatsBar)
	w.U8(p.Meter.BeatValue)
	w.U8(p.MeterInfoFlag)
	w.U32(uint32(len(p.Stingers)))
	for _, s := range p.Stingers {
		w.U32(s.TriggerID)
		w.U32(s.SegmentID)
		w.U32(s.SyncPlayAt)
		w.U32(s.CueFilterHash)
		w.I32(s.DontRepeatTime)
		w.U32(s.NumSegmentLookAhead)
	}
}

// A MusicFade is a fade applied during a music transition.
type MusicFade struct {
	TransitionTime int32
	FadeCurve      uint32
	FadeOffset     int32
}

func readMusicFade(r *wwise.Reader) MusicFade {
	return MusicFade{r.I32(), r.U32(), r.I32()}
}

func (f MusicFade) write(w *wwise.Writer) {
	w.I32(f.TransitionTime)
	w.U32(f.FadeCurve)
	w.I32(f.FadeOffset)
}

type TransitionSrcRule struct {
	Fade          MusicFade
	SyncType      uint32
	CueFilterHash uint32
	PlayPostExit  bool
}

type TransitionDstRule struct {
	Fade                   MusicFade
	CueFilterHash          uint32
	JumpToID               uint32
	EntryType              uint16
	PlayPreEntry           bool
	DestMatchSourceCueName bool
}

// A TransitionObject is a segment played between the source and destination
// of a transition.
type TransitionObject struct {
	SegmentID    uint32
	FadeIn       MusicFade
	FadeOut      MusicFade
	PlayPreEntry bool
	PlayPostExit bool
}

type TransitionRule struct {
	SrcIDs []uint32
	DstIDs []uint32
	Src    TransitionSrcRule
	Dst    TransitionDstRule
	// Nil when the rule has no transition segment.
	Object *TransitionObject
}

// MusicTransNodeParams are the params of music containers with transitions.
type MusicTransNodeParams struct {
	MusicNodeParams
	Rules []TransitionRule
}

func readMusicTransNodeParams(r *wwise.Reader) MusicTransNodeParams {
	p := MusicTransNodeParams{MusicNodeParams: readMusicNodeParams(r)}
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		var rule TransitionRule
		rule.SrcIDs = readIDs(r, int(r.U32()))
		rule.DstIDs = readIDs(r, int(r.U32()))
		rule.Src = TransitionSrcRule{
			Fade:          readMusicFade(r),
			SyncType:      r.U32(),
			CueFilterHash: r.U32(),
			PlayPostExit:  r.Bool(),
		}
		rule.Dst = TransitionDstRule{
			Fade:                   readMusicFade(r),
			CueFilterHash:          r.U32(),
			JumpToID:               r.U32(),
			EntryType:              r.U16(),
			PlayPreEntry:           r.Bool(),
			DestMatchSourceCueName: r.Bool(),
		}
		if r.Bool() {
			rule.Object = &TransitionObject{
				SegmentID:    r.U32(),
				FadeIn:       readMusicFade(r),
				FadeOut:      readMusicFade(r),
				PlayPreEntry: r.Bool(),
				PlayPostExit: r.Bool(),
			}
		}
		p.Rules = append(p.Rules, rule)
	}
	return p
}

func (p *MusicTransNodeParams) write(w *wwise.Writer) {
	p.MusicNodeParams.write(w)
	w.U32(uint32(len(p.Rules)))
	for _, rule := range p.Rules {
		w.U32(uint32(len(rule.SrcIDs)))
		writeIDs(w, rule.SrcIDs)
		w.U32(uint32(len(rule.DstIDs)))
		writeIDs(w, rule.DstIDs)
		rule.Src.Fade.write(w)
		w.U32(rule.Src.SyncType)
		w.U32(rule.Src.CueFilterHash)
		w.Bool(rule.Src.PlayPostExit)
		rule.Dst.Fade.write(w)
		w.U32(rule.Dst.CueFilterHash)
		w.U32(rule.Dst.JumpToID)
		w.U16(rule.Dst.EntryType)
		w.Bool(rule.Dst.PlayPreEntry)
		w.Bool(rule.Dst.DestMatchSourceCueName)
		w.Bool(rule.Object != nil)
		if o := rule.Object; o != nil {
			w.U32(o.SegmentID)
			o.FadeIn.write(w)
			o.FadeOut.write(w)
			w.Bool(o.PlayPreEntry)
			w.Bool(o.PlayPostExit)
		}
	}
}

// A Marker is a named position within a music segment.
type Marker struct {
	ID       uint32
	Position float64
	Name     string
}

// A MusicSegmentObject is a timeline of music tracks.
type MusicSegmentObject struct {
	ObjectDescriptor
	Music    MusicNodeParams
	Duration float64
	Markers  []Marker
}

func decodeMusicSegment(d ObjectDescriptor, r *wwise.Reader) *MusicSegmentObject {
	o := &MusicSegmentObject{ObjectDescriptor: d}
	o.Music = readMusicNodeParams(r)
	o.Duration = r.F64()
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		o.Markers = append(o.Markers, Marker{r.U32(), r.F64(), r.String32()})
	}
	return o
}

func (o *MusicSegmentObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Music.write(w)
		w.F64(o.Duration)
		w.U32(uint32(len(o.Markers)))
		for _, m := range o.Markers {
			w.U32(m.ID)
			w.F64(m.Position)
			w.String32(m.Name)
		}
	})
}

// A TrackPlaylistItem places a source on the timeline of a track.
type TrackPlaylistItem struct {
	TrackID         uint32
	SourceID        uint32
	PlayAt          float64
	BeginTrimOffset float64
	EndTrimOffset   float64
	SrcDuration     float64
}

type ClipAutomation struct {
	ClipIndex uint32
	AutoType  uint32
	Points    []GraphPoint
}

// The track type of switch tracks, which store switch and transition params.
const trackTypeSwitch = 3

// TrackSwitchParams select a sub track from a switch group.
type TrackSwitchParams struct {
	GroupType     uint8
	GroupID       uint32
	DefaultSwitch uint32
	SwitchAssoc   []uint32
	SrcFade       MusicFade
	SyncType      uint32
	CueFilterHash uint32
	DstFade       MusicFade
}

// A MusicTrackObject plays its sources on a timeline.
type MusicTrackObject struct {
	ObjectDescriptor
	Flags          uint8
	Sources        []BankSourceData
	Playlist       []TrackPlaylistItem
	NumSubTrack    uint32
	ClipAutomation []ClipAutomation
	Base           NodeBaseParams
	TrackType      uint8
	// Only set for switch tracks.
	Switch        *TrackSwitchParams
	LookAheadTime int32
}

func decodeMusicTrack(d ObjectDescriptor, r *wwise.Reader) *MusicTrackObject {
	o := &MusicTrackObject{ObjectDescriptor: d}
	o.Flags = r.U8()
	n := int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		o.Sources = append(o.Sources, readBankSourceData(r))
	}
	n = int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		o.Playlist = append(o.Playlist, TrackPlaylistItem{
			r.U32(), r.U32(), r.F64(), r.F64(), r.F64(), r.F64(),
		})
	}
	if n > 0 {
		o.NumSubTrack = r.U32()
	}
	n = int(r.U32())
	for i := 0; i < n && r.Err() == nil; i++ {
		c := ClipAutomation{ClipIndex: r.U32(), AutoType: r.U32()}
		c.Points = readGraphPoints(r, int(r.U32()))
		o.ClipAutomation = append(o.ClipAutomation, c)
	}
	o.Base = readNodeBaseParams(r)
	o.TrackType = r.U8()
	if o.TrackType == trackTypeSwitch {
		s := &TrackSwitchParams{
			GroupType:     r.U8(),
			GroupID:       r.U32(),
			DefaultSwitch: r.U32(),
		}
		s.SwitchAssoc = readIDs(r, int(r.U32()))
		s.SrcFade = readMusicFade(r)
		s.SyncType = r.U32()
		s.CueFilterHash = r.U32()
		s.DstFade = readMusicFade(r)
		o.Switch = s
	}
	o.LookAheadTime = r.I32()
	return o
}

func (o *MusicTrackObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		w.U8(o.Flags)
		w.U32(uint32(len(o.Sources)))
		for i := range o.Sources {
			o.Sources[i].write(w)
		}
		w.U32(uint32(len(o.Playlist)))
		for _, p := range o.Playlist {
			w.U32(p.TrackID)
			w.U32(p.SourceID)
			w.F64(p.PlayAt)
			w.F64(p.BeginTrimOffset)
			w.F64(p.EndTrimOffset)
			w.F64(p.SrcDuration)
		}
		if len(o.Playlist) > 0 {
			w.U32(o.NumSubTrack)
		}
		w.U32(uint32(len(o.ClipAutomation)))
		for _, c := range o.ClipAutomation {
			w.U32(c.ClipIndex)
			w.U32(c.AutoType)
			w.U32(uint32(len(c.Points)))
			writeGraphPoints(w, c.Points)
		}
		o.Base.write(w)
		w.U8(o.TrackType)
		if o.TrackType == trackTypeSwitch {
			s := o.Switch
			if s == nil {
				s = new(TrackSwitchParams)
			}
			w.U8(s.GroupType)
			w.U32(s.GroupID)
			w.U32(s.DefaultSwitch)
			w.U32(uint32(len(s.SwitchAssoc)))
			writeIDs(w, s.SwitchAssoc)
			s.SrcFade.write(w)
			w.U32(s.SyncType)
			w.U32(s.CueFilterHash)
			s.DstFade.write(w)
		}
		w.I32(o.LookAheadTime)
	})
}

// MediaRefs returns the media information of every source of the track.
func (o *MusicTrackObject) MediaRefs() []*MediaInformation {
	refs := make([]*MediaInformation, len(o.Sources))
	for i := range o.Sources {
		refs[i] = &o.Sources[i].Media
	}
	return refs
}

// A MusicSwitchObject plays the child selected by its decision tree.
type MusicSwitchObject struct {
	ObjectDescriptor
	Trans            MusicTransNodeParams
	ContinuePlayback bool
	Tree             DecisionTree
}

func decodeMusicSwitch(d ObjectDescriptor, r *wwise.Reader) (*MusicSwitchObject, error) {
	o := &MusicSwitchObject{ObjectDescriptor: d}
	o.Trans = readMusicTransNodeParams(r)
	o.ContinuePlayback = r.Bool()
	if r.Err() != nil {
		return nil, r.Err()
	}
	t, err := readDecisionTree(r)
	if err != nil {
		return nil, err
	}
	o.Tree = t
	return o, nil
}

func (o *MusicSwitchObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Trans.write(w)
		w.Bool(o.ContinuePlayback)
		o.Tree.write(w)
	})
}

// A MusicPlaylistItem is a node of a music playlist. Leaves reference a
// segment; groups hold children played randomly or in sequence.
type MusicPlaylistItem struct {
	SegmentID        uint32
	PlaylistItemID   uint32
	RSType           uint32
	Loop             int16
	LoopMin          int16
	LoopMax          int16
	Weight           uint32
	AvoidRepeatCount uint16
	IsUsingWeight    bool
	IsShuffle        bool
	Children         []*MusicPlaylistItem
}

// Count returns the number of items in the tree rooted at it.
func (it *MusicPlaylistItem) Count() int {
	n := 1
	for _, c := range it.Children {
		n += c.Count()
	}
	return n
}

// SegmentIDs returns the segments referenced by the tree in playlist order.
func (it *MusicPlaylistItem) SegmentIDs() []uint32 {
	var ids []uint32
	if it.SegmentID != 0 {
		ids = append(ids, it.SegmentID)
	}
	for _, c := range it.Children {
		ids = append(ids, c.SegmentIDs()...)
	}
	return ids
}

// readPlaylistItem reads an item and its children. budget is the number of
// items left of the playlist's declared total.
func readPlaylistItem(r *wwise.Reader, budget *int) (*MusicPlaylistItem, error) {
	if *budget <= 0 {
		return nil, fmt.Errorf("music playlist holds more items than declared")
	}
	*budget--
	it := &MusicPlaylistItem{SegmentID: r.U32(), PlaylistItemID: r.U32()}
	n := int(r.U32())
	it.RSType = r.U32()
	it.Loop = r.I16()
	it.LoopMin = r.I16()
	it.LoopMax = r.I16()
	it.Weight = r.U32()
	it.AvoidRepeatCount = r.U16()
	it.IsUsingWeight = r.Bool()
	it.IsShuffle = r.Bool()
	if r.Err() != nil {
		return nil, r.Err()
	}
	for i := 0; i < n; i++ {
		c, err := readPlaylistItem(r, budget)
		if err != nil {
			return nil, err
		}
		it.Children = append(it.Children, c)
	}
	return it, nil
}

func (it *MusicPlaylistItem) write(w *wwise.Writer) {
	w.U32(it.SegmentID)
	w.U32(it.PlaylistItemID)
	w.U32(uint32(len(it.Children)))
	w.U32(it.RSType)
	w.I16(it.Loop)
	w.I16(it.LoopMin)
	w.I16(it.LoopMax)
	w.U32(it.Weight)
	w.U16(it.AvoidRepeatCount)
	w.Bool(it.IsUsingWeight)
	w.Bool(it.IsShuffle)
	for _, c := range it.Children {
		c.write(w)
	}
}

// A MusicRanSeqObject plays segments following its playlist.
type MusicRanSeqObject struct {
	ObjectDescriptor
	Trans MusicTransNodeParams
	// Nil when the playlist is empty.
	Playlist *MusicPlaylistItem
}

func decodeMusicRanSeq(d ObjectDescriptor, r *wwise.Reader) (*MusicRanSeqObject, error) {
	o := &MusicRanSeqObject{ObjectDescriptor: d}
	o.Trans = readMusicTransNodeParams(r)
	total := int(r.U32())
	if r.Err() != nil {
		return nil, r.Err()
	}
	if total == 0 {
		return o, nil
	}
	budget := total
	root, err := readPlaylistItem(r, &budget)
	if err != nil {
		return nil, err
	}
	if budget != 0 {
		return nil, fmt.Errorf("music playlist declares %d items but holds %d",
			total, total-budget)
	}
	o.Playlist = root
	return o, nil
}

func (o *MusicRanSeqObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		o.Trans.write(w)
		if o.Playlist == nil {
			w.U32(0)
			return
		}
		w.U32(uint32(o.Playlist.Count()))
		o.Playlist.write(w)
	})
}
