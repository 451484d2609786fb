package hirc

import (
	"github.com/hpxro7/wwisecodec/wwise"
)

// StreamType describes where the media of a source is stored.
type StreamType uint8

const (
	// The wem is embedded in the DATA section of a SoundBank.
	StreamEmbedded StreamType = 0
	// The start of the wem is embedded, the rest is streamed.
	StreamPrefetch StreamType = 1
	// The wem is streamed from a File Package or loose file.
	StreamStreaming StreamType = 2
)

func (s StreamType) String() string {
	switch s {
	case StreamEmbedded:
		return "embedded"
	case StreamPrefetch:
		return "prefetch"
	case StreamStreaming:
		return "streaming"
	}
	return "unknown"
}

const (
	srcIsLanguageSpecific = 1 << 0
	srcPrefetch           = 1 << 1
	srcNonCachable        = 1 << 3
	srcHasSource          = 1 << 7
)

// The plugin type of source plugins, which store a parameter block.
const pluginTypeSource = 2

// MediaInformation identifies a wem and repeats its in-memory size.
type MediaInformation struct {
	SourceID uint32
	// The size of the wem (or of its prefetched part). This duplicates the
	// size recorded in the DIDX and must be kept in sync with it.
	InMemoryMediaSize uint32
	Flags             uint8
}

func (m *MediaInformation) IsLanguageSpecific() bool {
	return hasBit(m.Flags, srcIsLanguageSpecific)
}
func (m *MediaInformation) Prefetch() bool    { return hasBit(m.Flags, srcPrefetch) }
func (m *MediaInformation) NonCachable() bool { return hasBit(m.Flags, srcNonCachable) }
func (m *MediaInformation) HasSource() bool   { return hasBit(m.Flags, srcHasSource) }

func (m *MediaInformation) SetLanguageSpecific(v bool) {
	setBit(&m.Flags, srcIsLanguageSpecific, v)
}

// BankSourceData describes the source of a sound or music track.
type BankSourceData struct {
	PluginID   uint32
	StreamType StreamType
	Media      MediaInformation
	// The parameter block of a source plugin. Only stored when PluginType is
	// the source plugin type.
	PluginParams []byte
}

// PluginType returns the type nibble of the plugin ID.
func (s *BankSourceData) PluginType() uint32 {
	return s.PluginID & 0x0F
}

func readBankSourceData(r *wwise.Reader) BankSourceData {
	s := BankSourceData{
		PluginID:   r.U32(),
		StreamType: StreamType(r.U8()),
	}
	s.Media = MediaInformation{
		SourceID:          r.U32(),
		InMemoryMediaSize: r.U32(),
		Flags:             r.U8(),
	}
	if s.PluginType() == pluginTypeSource {
		s.PluginParams = r.Bytes(int(r.U32()))
	}
	return s
}

func (s *BankSourceData) write(w *wwise.Writer) {
	w.U32(s.PluginID)
	w.U8(uint8(s.StreamType))
	w.U32(s.Media.SourceID)
	w.U32(s.Media.InMemoryMediaSize)
	w.U8(s.Media.Flags)
	if s.PluginType() == pluginTypeSource {
		w.U32(uint32(len(s.PluginParams)))
		w.Write(s.PluginParams)
	}
}
