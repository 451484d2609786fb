package hirc

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/hpxro7/wwisecodec/wwise"
)

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func encode(t *testing.T, obj Object) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := obj.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if int(n) != buf.Len() {
		t.Fatalf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}
	return buf.Bytes()
}

// assertRoundTrip encodes obj, decodes the result and checks that encoding
// the decoded object reproduces the same bytes.
func assertRoundTrip(t *testing.T, obj Object) Object {
	t.Helper()
	data := encode(t, obj)
	r := wwise.NewReader(data)
	got, err := Decode(r, nullLogger())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Decode left %d bytes", r.Remaining())
	}
	if got.ID() != obj.ID() || got.Type() != obj.Type() {
		t.Errorf("got %s %d, expected %s %d", got.Type(), got.ID(), obj.Type(),
			obj.ID())
	}
	if again := encode(t, got); !bytes.Equal(again, data) {
		t.Errorf("re-encoded %s differs:\n got % X\nwant % X", obj.Type(), again,
			data)
	}
	return got
}

func desc(typ Type, id uint32) ObjectDescriptor {
	return ObjectDescriptor{ObjectType: typ, ObjectId: id}
}

func sampleBase() NodeBaseParams {
	return NodeBaseParams{
		Fx: FxChain{
			OverrideParent: true,
			Bypass:         0x10,
			Effects:        []Effect{{Index: 0, FxID: 77, IsShareSet: true}},
		},
		OverrideBusID:  0x100,
		DirectParentID: 0x200,
		Bits:           nodePriorityOverrideParent | nodeEnableMidiNoteTracking,
		Props:          PropBundle{[]Prop{{ID: 0x00, Value: 0x3F800000}, {ID: PropLoop, Value: 3}}},
		Ranged:         RangedModifiers{[]RangedProp{{ID: 0x02, Min: -1, Max: 1}}},
		Positioning: PositioningParams{
			Bits:          posOverrideParent | pos3DAvailable,
			Bits3D:        pos3DUserDefined | pos3DIsLooping,
			AttenuationID: 0x300,
			Path: &PathAutomation{
				PathMode:       1,
				TransitionTime: 500,
				Vertices:       []PathVertex{{1, 2, 3, 100}, {4, 5, 6, 200}},
				Playlist:       []PathPlaylistItem{{0, 2}},
				Ranges:         []PathRange{{10, 0, 10}},
			},
		},
		Aux: AuxParams{Bits: auxHasAux, AuxIDs: [4]uint32{1, 2, 3, 4}},
		Adv: AdvSettings{Bits: advKillNewest, MaxNumInstance: 8, HdrBits: hdrEnableEnvelope},
		States: StateChunk{[]StateGroup{{
			ID:       0x400,
			SyncType: 1,
			States:   []StateRef{{0x401, 0x402}},
		}}},
		RTPC: RTPCList{{
			ID:      0x500,
			ParamID: 6,
			CurveID: 0x501,
			Scaling: 2,
			Points:  []GraphPoint{{0, 0, 4}, {100, 1, 4}},
		}},
	}
}

func TestSoundRoundTrip(t *testing.T) {
	s := &SoundObject{
		ObjectDescriptor: desc(TypeSound, 0x1001),
		Source: BankSourceData{
			PluginID:   0x00040001,
			StreamType: StreamEmbedded,
			Media:      MediaInformation{SourceID: 0xABCD, InMemoryMediaSize: 1234},
		},
		Base: sampleBase(),
	}
	got := assertRoundTrip(t, s).(*SoundObject)
	if !reflect.DeepEqual(got.Base, s.Base) {
		t.Errorf("node base params differ:\n got %+v\nwant %+v", got.Base, s.Base)
	}
	if refs := got.MediaRefs(); len(refs) != 1 || refs[0].SourceID != 0xABCD {
		t.Errorf("unexpected media refs %+v", refs)
	}
	if !got.Base.Positioning.IsLooping() || got.Base.Positioning.IsDynamic() {
		t.Errorf("unexpected 3D bits 0x%02X", got.Base.Positioning.Bits3D)
	}
}

func TestSourcePluginParams(t *testing.T) {
	s := &SoundObject{
		ObjectDescriptor: desc(TypeSound, 0x1002),
		Source: BankSourceData{
			PluginID:     0x00650002,
			StreamType:   StreamStreaming,
			Media:        MediaInformation{SourceID: 9, Flags: srcHasSource},
			PluginParams: []byte{1, 2, 3},
		},
	}
	got := assertRoundTrip(t, s).(*SoundObject)
	if !bytes.Equal(got.Source.PluginParams, []byte{1, 2, 3}) {
		t.Errorf("got plugin params % X", got.Source.PluginParams)
	}
	if !got.Source.Media.HasSource() || got.Source.Media.Prefetch() {
		t.Errorf("unexpected media flags 0x%02X", got.Source.Media.Flags)
	}
}

func TestSoundLoop(t *testing.T) {
	s := &SoundObject{ObjectDescriptor: desc(TypeSound, 1), Base: sampleBase()}
	if l := s.Loop(); !l.Loops || l.Value != 3 {
		t.Errorf("got loop %+v", l)
	}
	before := len(encode(t, s))
	s.SetLoop(LoopValue{Loops: false})
	if l := s.Loop(); l.Loops {
		t.Errorf("loop was not removed")
	}
	if after := len(encode(t, s)); after != before-5 {
		t.Errorf("removing a property changed the size from %d to %d", before, after)
	}
	s.SetLoop(LoopValue{true, InfiniteLoops})
	if l := s.Loop(); !l.Loops || l.Value != InfiniteLoops {
		t.Errorf("got loop %+v", l)
	}
}

func TestActionRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		typ    ActionType
		params ActionParams
	}{
		{"play", 0x0403, &PlayParams{FadeCurve: 4, BankID: 0xB00}},
		{"stop", 0x0102, &ActiveParams{FadeCurve: 4, Bits: 1,
			Exceptions: []Exception{{ID: 5, IsBus: true}}}},
		{"mute", 0x0603, &ValueParams{FadeCurve: 4}},
		{"set volume", 0x0A03, &ValueParams{FadeCurve: 4,
			Prop: &PropValue{1, Randomizer{-6, 0, 0}}}},
		{"set game parameter", 0x1302, &GameParamParams{ValueMeaning: 2,
			Value: Randomizer{50, -1, 1}}},
		{"set state", 0x1204, &StateParams{GroupID: 7, TargetStateID: 8}},
		{"set switch", 0x1901, &SwitchParams{GroupID: 7, SwitchID: 9}},
		{"bypass fx", 0x1A02, &BypassFXParams{IsBypass: true, TargetMask: 0xFF}},
		{"seek", 0x1E03, &SeekParams{Position: Randomizer{0.5, 0, 0}, SnapToMarker: true}},
		{"break", 0x1C02, NoParams{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &ActionObject{
				ObjectDescriptor: desc(TypeAction, 0x2000),
				ActionType:       tt.typ,
				TargetID:         0x3000,
				Props:            PropBundle{[]Prop{{ID: 0x0E, Value: 100}}},
				Params:           tt.params,
			}
			got := assertRoundTrip(t, a).(*ActionObject)
			if !reflect.DeepEqual(got.Params, tt.params) {
				t.Errorf("got params %+v, expected %+v", got.Params, tt.params)
			}
		})
	}
}

func TestActionPlay(t *testing.T) {
	a := &ActionObject{
		ObjectDescriptor: desc(TypeAction, 1),
		ActionType:       0x0403,
		Params:           &PlayParams{BankID: 42},
	}
	if p, ok := a.Play(); !ok || p.BankID != 42 {
		t.Errorf("got %+v, %v", p, ok)
	}
	a.Params = NoParams{}
	if _, ok := a.Play(); ok {
		t.Errorf("non play action reported play params")
	}
}

func TestUnknownActionKind(t *testing.T) {
	// 0x05 is play and continue, which is never stored in a bank.
	for _, typ := range []ActionType{0x7F00, 0x0503} {
		a := &ActionObject{
			ObjectDescriptor: desc(TypeAction, 1),
			ActionType:       typ,
			Params:           &PlayParams{BankID: 1},
		}
		_, err := Decode(wwise.NewReader(encode(t, a)), nullLogger())
		if !errors.Is(err, wwise.ErrUnsupportedType) {
			t.Errorf("0x%04X: expected unsupported type, got %v", uint16(typ), err)
		}
	}
}

func TestContainersRoundTrip(t *testing.T) {
	objs := []Object{
		&StateObject{desc(TypeState, 1), PropBundle{[]Prop{{ID: 0, Value: 1}}}},
		&EventObject{desc(TypeEvent, 2), []uint32{10, 11, 12}},
		&ActorMixerObject{desc(TypeActorMixer, 3), sampleBase(),
			Children{[]uint32{4, 5}}},
		&RanSeqCntrObject{
			ObjectDescriptor: desc(TypeRanSeqCntr, 4),
			Base:             sampleBase(),
			LoopCount:        1,
			TransitionTime:   1000,
			AvoidRepeatCount: 1,
			Bits:             rsUsingWeight | rsContinuous,
			Children:         Children{[]uint32{6, 7}},
			Playlist:         []PlaylistEntry{{6, 50000}, {7, 50000}},
		},
		&SwitchCntrObject{
			ObjectDescriptor: desc(TypeSwitchCntr, 5),
			GroupID:          0x99,
			DefaultSwitch:    0x98,
			Children:         Children{[]uint32{8}},
			Switches:         []SwitchPackage{{0x98, []uint32{8}}},
			NodeParams:       []SwitchNodeParams{{NodeID: 8, Bits: 1, FadeInTime: 10}},
		},
		&LayerCntrObject{
			ObjectDescriptor: desc(TypeLayerCntr, 6),
			Children:         Children{[]uint32{9}},
			Layers: []Layer{{
				ID:     1,
				RTPCID: 0x77,
				Assocs: []LayerAssoc{{9, []GraphPoint{{0, 1, 4}}}},
			}},
			ContinuousValidation: true,
		},
		&BusObject{
			ObjectDescriptor: desc(TypeBus, 7),
			Props:            PropBundle{[]Prop{{ID: 5, Value: 6}}},
			Bits:             busKillNewest,
			MaxNumInstance:   16,
			ChannelConfig:    0x3102,
			MaxDuckVolume:    -96,
			Ducks:            []DuckInfo{{BusID: 8, DuckVolume: -6, FadeCurve: 4}},
			Fx: BusFxChain{
				Effects: []Effect{{Index: 1, FxID: 3}},
				MixerID: 0x55,
			},
			RTPC: RTPCList{{ID: 1, Points: []GraphPoint{{0, 0, 0}}}},
		},
		&AttenuationObject{
			ObjectDescriptor: desc(TypeAttenuation, 8),
			ConeEnabled:      1,
			Cone:             &ConeParams{90, 270, -6, 10, 0},
			CurveToUse:       [7]int8{0, -1, -1, 1, -1, -1, -1},
			Curves: []ConversionTable{
				{Scaling: 2, Points: []GraphPoint{{0, 0, 4}, {100, -96, 4}}},
				{Scaling: 0, Points: []GraphPoint{{0, 0, 4}}},
			},
		},
		&FxObject{
			ObjectDescriptor: desc(TypeFxShareSet, 9),
			PluginID:         0x00810003,
			Params:           []byte{0, 0, 0x80, 0x3F},
			Media:            []FxMedia{{0, 0x1234}},
			Trailer:          []byte{0, 0, 0},
		},
	}
	for _, obj := range objs {
		t.Run(obj.Type().String(), func(t *testing.T) {
			got := assertRoundTrip(t, obj)
			if !reflect.DeepEqual(got, obj) {
				t.Errorf("decoded object differs:\n got %+v\nwant %+v", got, obj)
			}
		})
	}
}

func TestFeedbackTypesUnsupported(t *testing.T) {
	for _, typ := range []Type{TypeFeedbackBus, TypeFeedbackNode, 0x40} {
		w := wwise.NewWriter()
		w.U8(uint8(typ))
		w.U32(4)
		w.U32(1)
		_, err := Decode(wwise.NewReader(w.Bytes()), nullLogger())
		var ute *wwise.UnsupportedTypeError
		if !errors.As(err, &ute) || ute.Type != uint8(typ) {
			t.Errorf("%s: expected unsupported type error, got %v", typ, err)
		}
	}
}

func TestDecodeTruncatedObject(t *testing.T) {
	w := wwise.NewWriter()
	w.U8(uint8(TypeEvent))
	w.U32(100)
	w.U32(1)
	_, err := Decode(wwise.NewReader(w.Bytes()), nullLogger())
	if !errors.Is(err, wwise.ErrTruncatedStream) {
		t.Errorf("expected truncated stream, got %v", err)
	}
}

func TestDecodeReportsUnderrun(t *testing.T) {
	w := wwise.NewWriter()
	w.U8(uint8(TypeEvent))
	w.U32(10)
	w.U32(1)
	w.U32(0)
	w.U16(0xFFFF)
	log, hook := test.NewNullLogger()
	obj, err := Decode(wwise.NewReader(w.Bytes()), log)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if obj.ID() != 1 {
		t.Errorf("got id %d", obj.ID())
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %v", e)
	}
	if e.Data["delta"] != -2 {
		t.Errorf("got delta %v", e.Data["delta"])
	}
}

func TestFlagSetters(t *testing.T) {
	var p PositioningParams
	p.SetOverrideParent(true)
	p.SetEnable2D(true)
	p.SetEnableSpatialization(true)
	if want := uint8(posOverrideParent | posEnable2D | posEnableSpatialization); p.Bits != want {
		t.Errorf("got positioning bits 0x%02X, expected 0x%02X", p.Bits, want)
	}
	p.SetEnable2D(false)
	if p.Enable2D() || !p.OverrideParent() || !p.EnableSpatialization() {
		t.Errorf("clearing 2D changed other bits: 0x%02X", p.Bits)
	}

	s := &SoundObject{
		ObjectDescriptor: desc(TypeSound, 0x7000),
		Source: BankSourceData{
			PluginID: 0x00040001,
			Media:    MediaInformation{SourceID: 9, Flags: srcHasSource},
		},
	}
	s.Base.Positioning.SetEnable2D(true)
	s.Source.Media.SetLanguageSpecific(true)
	got := assertRoundTrip(t, s).(*SoundObject)
	if !got.Base.Positioning.Enable2D() {
		t.Errorf("2D flag was not kept")
	}
	if m := got.Source.Media; !m.IsLanguageSpecific() || !m.HasSource() || m.Prefetch() {
		t.Errorf("got source flags 0x%02X", m.Flags)
	}
	s.Source.Media.SetLanguageSpecific(false)
	if s.Source.Media.Flags != srcHasSource {
		t.Errorf("clearing language specific left flags 0x%02X", s.Source.Media.Flags)
	}
}
